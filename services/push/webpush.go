package pushsvc

import (
	"context"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/push"
)

type webpushSender struct {
	opts *webpush.Options
}

var _ push.Sender = (*webpushSender)(nil)

// NewWebpushSender delivers payloads over the Web Push protocol with VAPID auth.
func NewWebpushSender(conf *core.Config) push.Sender {
	return &webpushSender{
		opts: &webpush.Options{
			Subscriber:      conf.Push.Subscriber,
			VAPIDPublicKey:  conf.Push.VAPIDPublicKey,
			VAPIDPrivateKey: conf.Push.VAPIDPrivateKey,
			TTL:             30,
		},
	}
}

func (s *webpushSender) Send(ctx context.Context, sub push.Subscription, payload []byte) error {
	wsub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	res, err := webpush.SendNotification(payload, wsub, s.opts)
	if err != nil {
		return errors.Wrap(err, "sending web push")
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone:
		return push.ErrSubscriptionGone
	case res.StatusCode >= http.StatusBadRequest:
		return errors.Errorf("web push - status: %d", res.StatusCode)
	}
	return nil
}
