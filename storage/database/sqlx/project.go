package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/project"
)

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sql.DB) *projectRepository {
	return &projectRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo projectRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return project.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo projectRepository) CountProjects(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM project`); err != nil {
		return 0, errors.Wrap(err, "counting projects")
	}
	return count, nil
}

func (repo projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	query := `
		INSERT INTO project (id, name, description, deadline, created_by, created_at)
		VALUES (:id, :name, :description, :deadline, :created_by, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, prj); err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return prj, nil
}

func (repo projectRepository) AssignUsers(ctx context.Context, projectID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	query := `INSERT INTO project_assignment (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, uid := range userIDs {
		if _, err := repo.db.ExecContext(ctx, query, projectID, uid); err != nil {
			return errors.Wrap(err, "inserting assignment")
		}
	}
	return nil
}

func (repo projectRepository) ClearAssignments(ctx context.Context, projectID string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM project_assignment WHERE project_id = $1`, projectID); err != nil {
		return errors.Wrap(err, "clearing assignments")
	}
	return nil
}

// detailRow flattens the project/creator/assignee join; assignee is NULL for
// projects with no assignments.
type detailRow struct {
	project.Project
	CreatedByUsername string         `db:"created_by_username"`
	Assignee          sql.NullString `db:"assignee"`
}

var detailQuery = `
	SELECT p.id, p.name, p.description, p.deadline, p.created_by, p.created_at,
	       c.username AS created_by_username, a.username AS assignee
	FROM project p
	JOIN "user" c ON c.id = p.created_by
	LEFT JOIN project_assignment pa ON pa.project_id = p.id
	LEFT JOIN "user" a ON a.id = pa.user_id`

// foldDetails groups join rows into one Detail per project, preserving row order.
func foldDetails(rows []detailRow) []project.Detail {
	details := make([]project.Detail, 0)
	idx := make(map[string]int)
	for _, row := range rows {
		i, ok := idx[row.ID]
		if !ok {
			i = len(details)
			idx[row.ID] = i
			details = append(details, project.Detail{
				Project:           row.Project,
				CreatedByUsername: row.CreatedByUsername,
				Assignees:         make([]string, 0),
			})
		}
		if row.Assignee.Valid {
			details[i].Assignees = append(details[i].Assignees, row.Assignee.String)
		}
	}
	return details
}

func (repo projectRepository) QueryProjects(ctx context.Context, limit, offset int) ([]project.Detail, error) {
	query := detailQuery + `
		WHERE p.id IN (SELECT id FROM project ORDER BY created_at DESC LIMIT $1 OFFSET $2)
		ORDER BY p.created_at DESC, a.username`
	rows := make([]detailRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	return foldDetails(rows), nil
}

func (repo projectRepository) GetProject(ctx context.Context, id string) (project.Detail, error) {
	query := detailQuery + ` WHERE p.id = $1 ORDER BY a.username`
	rows := make([]detailRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, query, id); err != nil {
		return project.Detail{}, errors.Wrap(err, "finding project")
	}
	if len(rows) == 0 {
		return project.Detail{}, project.ErrNotFound
	}
	return foldDetails(rows)[0], nil
}

func (repo projectRepository) GetOwnedProject(ctx context.Context, id, creatorID string) (project.Project, error) {
	var prj project.Project
	query := `SELECT * FROM project WHERE id = $1`
	if err := repo.db.GetContext(ctx, &prj, query, id); err != nil {
		return project.Project{}, repo.trapNoRowsErr(err, "finding project")
	}
	if prj.CreatedBy != creatorID {
		return project.Project{}, project.ErrNotOwner
	}
	return prj, nil
}

func (repo projectRepository) QueryUserProjects(ctx context.Context, userID string) ([]project.Project, error) {
	query := `
		SELECT p.id, p.name, p.description, p.deadline, p.created_by, p.created_at
		FROM project p
		JOIN project_assignment pa ON pa.project_id = p.id
		WHERE pa.user_id = $1
		ORDER BY p.deadline`
	projects := make([]project.Project, 0)
	if err := repo.db.SelectContext(ctx, &projects, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying user projects")
	}
	return projects, nil
}

func (repo projectRepository) UpdateProject(ctx context.Context, prj project.Project) error {
	query := `
		UPDATE project
		SET name = :name, description = :description, deadline = :deadline
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, prj)
	if err != nil {
		return errors.Wrap(err, "updating project")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (repo projectRepository) DeleteProject(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM project WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting project")
	}
	return nil
}
