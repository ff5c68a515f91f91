package project

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
)

type Project struct {
	ID          string    `json:"project_id" db:"id"` // generated code, e.g. D02SEP2026KZ0001
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Deadline    time.Time `json:"deadline" db:"deadline"`
	CreatedBy   string    `json:"-" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Detail is a Project joined with its creator's and assignees' usernames.
type Detail struct {
	Project
	CreatedByUsername string   `json:"created_by"`
	Assignees         []string `json:"assignees"`
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	Assignees   []string  `json:"assignees" validate:"required,min=1,dive,required"` // usernames
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	for i, uname := range np.Assignees {
		np.Assignees[i] = core.CleanString(uname, true /* lower */)
	}
	return validate.Struct(np)
}

// UpdateProject carries changes to an existing Project; assignments are replaced wholesale.
type UpdateProject struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	Assignees   []string  `json:"assignees" validate:"required,min=1,dive,required"`
}

func (up *UpdateProject) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Description = core.CleanString(up.Description)
	for i, uname := range up.Assignees {
		up.Assignees[i] = core.CleanString(uname, true /* lower */)
	}
	return validate.Struct(up)
}

type Repository interface {
	CountProjects(ctx context.Context) (int, error)
	CreateProject(ctx context.Context, prj Project) (Project, error)
	AssignUsers(ctx context.Context, projectID string, userIDs []string) error
	ClearAssignments(ctx context.Context, projectID string) error
	// QueryProjects returns projects grouped with their assignees, newest first.
	QueryProjects(ctx context.Context, limit, offset int) ([]Detail, error)
	GetProject(ctx context.Context, id string) (Detail, error)
	// GetOwnedProject only matches when creatorID created the project.
	GetOwnedProject(ctx context.Context, id, creatorID string) (Project, error)
	// QueryUserProjects returns a user's assigned projects, soonest deadline first.
	QueryUserProjects(ctx context.Context, userID string) ([]Project, error)
	UpdateProject(ctx context.Context, prj Project) error
	DeleteProject(ctx context.Context, id string) error
}
