package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/kazi/core/reminder"
)

type reminderRepository struct {
	users *userTable
	prj   *projectTable
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *DB) reminder.Repository {
	return &reminderRepository{users: db.user, prj: db.prj}
}

// FetchAssignments replays the SQL join: active users with their assigned
// projects, grouped per user, soonest deadline first within a user.
func (repo *reminderRepository) FetchAssignments(ctx context.Context) ([]reminder.AssignmentRow, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()
	repo.prj.RLock()
	defer repo.prj.RUnlock()

	rows := make([]reminder.AssignmentRow, 0)
	for _, uid := range repo.users.order {
		usr := repo.users.table[uid]
		if !usr.IsActive {
			continue
		}

		var userRows []reminder.AssignmentRow
		for pid, uids := range repo.prj.assignments {
			for _, auid := range uids {
				if auid != uid {
					continue
				}
				if prj, ok := repo.prj.table[pid]; ok {
					userRows = append(userRows, reminder.AssignmentRow{
						UserID:      usr.ID,
						Username:    usr.Username,
						Email:       usr.Email,
						ProjectID:   prj.ID,
						ProjectName: prj.Name,
						Deadline:    prj.Deadline,
					})
				}
				break
			}
		}
		sort.Slice(userRows, func(i, j int) bool { return userRows[i].Deadline.Before(userRows[j].Deadline) })
		rows = append(rows, userRows...)
	}
	return rows, nil
}
