package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

// ErrSubscriptionGone signals that the push service no longer knows this endpoint;
// the subscription should be dropped.
var ErrSubscriptionGone = errors.New("push subscription gone")

type (
	// Sender delivers one payload to one subscription endpoint.
	Sender interface {
		Send(ctx context.Context, sub Subscription, payload []byte) error
	}

	Service interface {
		Subscribe(ctx context.Context, userID string, ns NewSubscription) (Subscription, error)
		// NotifyUser pushes the payload to every subscription the user holds.
		// Failed endpoints do not stop delivery to the remaining ones.
		NotifyUser(ctx context.Context, userID string, payload Notification) error
	}

	service struct {
		repo   Repository
		sender Sender
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, sender Sender, logger core.Logger) Service {
	return &service{
		repo:   repo,
		sender: sender,
		logger: logger,
	}
}

func (svc *service) Subscribe(ctx context.Context, userID string, ns NewSubscription) (Subscription, error) {
	sub := Subscription{
		UserID:    userID,
		ProjectID: ns.ProjectID,
		Endpoint:  ns.Endpoint,
		P256DH:    ns.Keys.P256DH,
		Auth:      ns.Keys.Auth,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.UpsertSubscription(ctx, sub)
}

func (svc *service) NotifyUser(ctx context.Context, userID string, payload Notification) error {
	subs, err := svc.repo.QueryUserSubscriptions(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "querying subscriptions")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshalling payload")
	}

	var lastErr error
	for _, sub := range subs {
		if err = svc.sender.Send(ctx, sub, data); err != nil {
			if errors.Cause(err) == ErrSubscriptionGone {
				if dErr := svc.repo.DeleteSubscription(ctx, sub.ID); dErr != nil {
					svc.logger.Warn(fmt.Sprintf("dropping gone subscription %s: %v", sub.ID, dErr), dErr)
				}
				continue
			}
			lastErr = err
		}
	}
	return lastErr
}
