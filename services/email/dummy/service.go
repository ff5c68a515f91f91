package dummymail

import (
	"sync"

	"github.com/trezcool/kazi/core"
)

// Service is an in-memory EmailService for tests. Messages are rendered and
// recorded synchronously; failures can be forced per recipient address.
type Service struct {
	mu      sync.Mutex
	sent    []core.EmailMessage
	FailFor map[string]error // keyed by first recipient address
}

var _ core.EmailService = (*Service)(nil)

func NewService() *Service {
	return &Service{FailFor: make(map[string]error)}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		_ = svc.SendMessage(msg)
	}
}

func (svc *Service) SendMessage(msg *core.EmailMessage) error {
	if err := msg.Render(); err != nil {
		return err
	}
	if len(msg.To) > 0 {
		if err, ok := svc.FailFor[msg.To[0].Address]; ok {
			return err
		}
	}
	if msg.HasRecipients() && msg.HasContent() {
		svc.mu.Lock()
		svc.sent = append(svc.sent, *msg)
		svc.mu.Unlock()
	}
	return nil
}

func (svc *Service) Sent() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.EmailMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}

func (svc *Service) Reset() {
	svc.mu.Lock()
	svc.sent = nil
	svc.mu.Unlock()
}
