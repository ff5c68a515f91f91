package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core/push"
)

type pushRepository struct {
	db *pushTable
}

var _ push.Repository = (*pushRepository)(nil) // interface compliance check

func NewPushRepository(db *DB) push.Repository {
	return &pushRepository{db: db.push}
}

func (repo *pushRepository) UpsertSubscription(ctx context.Context, sub push.Subscription) (push.Subscription, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range repo.db.order {
		existing := repo.db.table[id]
		if existing.UserID == sub.UserID && existing.ProjectID == sub.ProjectID && existing.Endpoint == sub.Endpoint {
			existing.P256DH = sub.P256DH
			existing.Auth = sub.Auth
			return *existing, nil
		}
	}

	sub.ID = uuid.New().String()
	repo.db.table[sub.ID] = &sub
	repo.db.order = append(repo.db.order, sub.ID)
	return sub, nil
}

func (repo *pushRepository) QueryUserSubscriptions(ctx context.Context, userID string) ([]push.Subscription, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]push.Subscription, 0)
	for _, id := range repo.db.order {
		if sub := repo.db.table[id]; sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (repo *pushRepository) DeleteSubscription(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, id)
	for i, oid := range repo.db.order {
		if oid == id {
			repo.db.order = append(repo.db.order[:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}
