package reminder

import "time"

// Conflict flags rows that disagree on a user's identity fields within one run.
// The first-seen value is kept; the rest is a data-integrity problem upstream.
type Conflict struct {
	UserID string
	Field  string
	Kept   string
	Got    string
}

// Aggregate folds assignment rows into one Bundle per user, in a single pass
// and in input order. The first row seen for a user pins its username and
// email; later rows disagreeing on either are reported as Conflicts.
// Users without rows never appear in the output.
func Aggregate(rows []AssignmentRow, now time.Time) (map[string]*Bundle, []Conflict) {
	bundles := make(map[string]*Bundle)
	var conflicts []Conflict

	for _, row := range rows {
		b, ok := bundles[row.UserID]
		if !ok {
			b = &Bundle{
				UserID:   row.UserID,
				Username: row.Username,
				Email:    row.Email,
			}
			bundles[row.UserID] = b
		} else {
			if row.Username != b.Username {
				conflicts = append(conflicts, Conflict{UserID: row.UserID, Field: "username", Kept: b.Username, Got: row.Username})
			}
			if row.Email != b.Email {
				conflicts = append(conflicts, Conflict{UserID: row.UserID, Field: "email", Kept: b.Email, Got: row.Email})
			}
		}

		b.Projects = append(b.Projects, ProjectSummary{
			ID:       row.ProjectID,
			Name:     row.ProjectName,
			Deadline: row.Deadline,
			DaysLeft: DaysUntil(row.Deadline, now),
		})
	}
	return bundles, conflicts
}
