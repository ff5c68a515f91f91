package reminder

import "time"

// AssignmentRow is one (user, assigned project) fact as returned by the data store,
// one row per active assignment. Rows only live for the duration of one run.
type AssignmentRow struct {
	UserID      string    `db:"user_id"`
	Username    string    `db:"username"`
	Email       string    `db:"email"`
	ProjectID   string    `db:"project_id"`
	ProjectName string    `db:"project_name"`
	Deadline    time.Time `db:"deadline"`
}

// ProjectSummary is a project as presented in a reminder, with its computed urgency.
type ProjectSummary struct {
	ID       string
	Name     string
	Deadline time.Time
	DaysLeft int
}

// Bundle groups all of one user's assigned projects for a single reminder.
// Projects keep the order their rows came in.
type Bundle struct {
	UserID   string
	Username string
	Email    string
	Projects []ProjectSummary
}

// DaysUntil returns the whole-day difference between deadline and now,
// truncated toward zero. Negative means overdue, zero means due today.
func DaysUntil(deadline, now time.Time) int {
	return int(deadline.Sub(now) / (24 * time.Hour))
}
