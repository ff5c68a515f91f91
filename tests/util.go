package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/kazi/core/project"
	"github.com/trezcool/kazi/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	uname, email, pwd string,
	isAdmin, isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	permLevel := user.PermissionUser
	if isAdmin {
		permLevel = user.PermissionAdmin
	}
	usr := user.User{
		Username:        uname,
		Email:           email,
		PermissionLevel: permLevel,
		IsActive:        isActive,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateProject(
	t *testing.T,
	repo project.Repository,
	id, name string,
	deadline time.Time,
	creator user.User,
	assignees ...user.User,
) project.Project {
	t.Helper()

	prj := project.Project{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Deadline:    deadline.UTC(),
		CreatedBy:   creator.ID,
		CreatedAt:   time.Now().UTC(),
	}
	prj, err := repo.CreateProject(context.Background(), prj)
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}

	ids := make([]string, 0, len(assignees))
	for _, usr := range assignees {
		ids = append(ids, usr.ID)
	}
	if err = repo.AssignUsers(context.Background(), prj.ID, ids); err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return prj
}
