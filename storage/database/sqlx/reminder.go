package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/reminder"
)

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *sql.DB) *reminderRepository {
	return &reminderRepository{db: sqlx.NewDb(db, "postgres")}
}

// FetchAssignments joins assignments with their users and projects.
// Rows are ordered by user so the aggregation step sees each user's rows together.
func (repo reminderRepository) FetchAssignments(ctx context.Context) ([]reminder.AssignmentRow, error) {
	query := `
		SELECT u.id AS user_id, u.username, u.email,
		       p.id AS project_id, p.name AS project_name, p.deadline
		FROM project_assignment pa
		JOIN "user" u ON u.id = pa.user_id
		JOIN project p ON p.id = pa.project_id
		WHERE u.is_active
		ORDER BY u.id, p.deadline`
	rows := make([]reminder.AssignmentRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return rows, nil
}
