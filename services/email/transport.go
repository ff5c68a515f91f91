package emailsvc

import (
	"context"
	"net/mail"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/reminder"
)

var reminderSubject = "Your project deadlines"

type reminderTransport struct {
	svc core.EmailService
}

var _ reminder.Transport = (*reminderTransport)(nil)

// NewReminderTransport delivers daily reminders through the EmailService.
func NewReminderTransport(svc core.EmailService) reminder.Transport {
	return &reminderTransport{svc: svc}
}

type reminderEmailData struct {
	Username string
	Projects []reminder.ProjectSummary
}

func (t *reminderTransport) SendReminder(ctx context.Context, email, username string, projects []reminder.ProjectSummary) error {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: username, Address: email}},
		Subject:      reminderSubject,
		TemplateName: "daily_reminder",
		TemplateData: reminderEmailData{
			Username: username,
			Projects: projects,
		},
	}

	done := make(chan error, 1)
	go func() { done <- t.svc.SendMessage(msg) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
