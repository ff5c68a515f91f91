package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/push"
)

type pushRepository struct {
	db *sqlx.DB
}

var _ push.Repository = (*pushRepository)(nil) // interface compliance check

func NewPushRepository(db *sql.DB) *pushRepository {
	return &pushRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo pushRepository) UpsertSubscription(ctx context.Context, sub push.Subscription) (push.Subscription, error) {
	sub.ID = uuid.New().String()
	query := `
		INSERT INTO push_subscription (id, user_id, project_id, endpoint, p256dh, auth, created_at)
		VALUES (:id, :user_id, :project_id, :endpoint, :p256dh, :auth, :created_at)
		ON CONFLICT (user_id, project_id, endpoint)
		DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth`
	if _, err := repo.db.NamedExecContext(ctx, query, sub); err != nil {
		return push.Subscription{}, errors.Wrap(err, "upserting subscription")
	}

	// re-read so the caller sees the surviving row's ID on conflict
	get := `SELECT * FROM push_subscription WHERE user_id = $1 AND project_id = $2 AND endpoint = $3`
	if err := repo.db.GetContext(ctx, &sub, get, sub.UserID, sub.ProjectID, sub.Endpoint); err != nil {
		return push.Subscription{}, errors.Wrap(err, "finding subscription")
	}
	return sub, nil
}

func (repo pushRepository) QueryUserSubscriptions(ctx context.Context, userID string) ([]push.Subscription, error) {
	subs := make([]push.Subscription, 0)
	query := `SELECT * FROM push_subscription WHERE user_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying subscriptions")
	}
	return subs, nil
}

func (repo pushRepository) DeleteSubscription(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM push_subscription WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting subscription")
	}
	return nil
}
