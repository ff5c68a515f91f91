package push

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
)

// Subscription is one browser push endpoint registered by a user for a project.
type Subscription struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	P256DH    string    `json:"p256dh" db:"p256dh"`
	Auth      string    `json:"auth" db:"auth"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// SubscriptionKeys mirrors the PushSubscription.keys object sent by browsers.
type SubscriptionKeys struct {
	P256DH string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// NewSubscription is the subscribe request payload.
type NewSubscription struct {
	ProjectID string           `json:"project_id" validate:"required"`
	Endpoint  string           `json:"endpoint" validate:"required,url"`
	Keys      SubscriptionKeys `json:"keys"`
}

func (ns *NewSubscription) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

// Notification is the payload pushed to subscribed browsers.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

type Repository interface {
	// UpsertSubscription inserts or refreshes the keys of an existing (user, project, endpoint) row.
	UpsertSubscription(ctx context.Context, sub Subscription) (Subscription, error)
	QueryUserSubscriptions(ctx context.Context, userID string) ([]Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error
}
