package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/kazi/core/project"
)

type projectRepository struct {
	db    *projectTable
	users *userTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db.prj, users: db.user}
}

// query returns projects newest first. Callers hold the lock.
func (repo *projectRepository) query() []project.Project {
	projects := make([]project.Project, 0, len(repo.db.order))
	for i := len(repo.db.order) - 1; i >= 0; i-- {
		projects = append(projects, *repo.db.table[repo.db.order[i]])
	}
	return projects
}

func (repo *projectRepository) username(id string) string {
	repo.users.RLock()
	defer repo.users.RUnlock()
	if usr, ok := repo.users.table[id]; ok {
		return usr.Username
	}
	return ""
}

func (repo *projectRepository) detail(prj project.Project) project.Detail {
	assignees := make([]string, 0)
	for _, uid := range repo.db.assignments[prj.ID] {
		assignees = append(assignees, repo.username(uid))
	}
	sort.Strings(assignees)
	return project.Detail{
		Project:           prj,
		CreatedByUsername: repo.username(prj.CreatedBy),
		Assignees:         assignees,
	}
}

func (repo *projectRepository) CountProjects(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[prj.ID] = &prj
	repo.db.order = append(repo.db.order, prj.ID)
	return prj, nil
}

func (repo *projectRepository) AssignUsers(ctx context.Context, projectID string, userIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, uid := range userIDs {
		var dup bool
		for _, existing := range repo.db.assignments[projectID] {
			if existing == uid {
				dup = true
				break
			}
		}
		if !dup {
			repo.db.assignments[projectID] = append(repo.db.assignments[projectID], uid)
		}
	}
	return nil
}

func (repo *projectRepository) ClearAssignments(ctx context.Context, projectID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.assignments, projectID)
	return nil
}

func (repo *projectRepository) QueryProjects(ctx context.Context, limit, offset int) ([]project.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	projects := repo.query()
	if offset >= len(projects) {
		return []project.Detail{}, nil
	}
	projects = projects[offset:]
	if limit < len(projects) {
		projects = projects[:limit]
	}

	details := make([]project.Detail, 0, len(projects))
	for _, prj := range projects {
		details = append(details, repo.detail(prj))
	}
	return details, nil
}

func (repo *projectRepository) GetProject(ctx context.Context, id string) (project.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prj, ok := repo.db.table[id]; ok {
		return repo.detail(*prj), nil
	}
	return project.Detail{}, project.ErrNotFound
}

func (repo *projectRepository) GetOwnedProject(ctx context.Context, id, creatorID string) (project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	prj, ok := repo.db.table[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	if prj.CreatedBy != creatorID {
		return project.Project{}, project.ErrNotOwner
	}
	return *prj, nil
}

func (repo *projectRepository) QueryUserProjects(ctx context.Context, userID string) ([]project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	projects := make([]project.Project, 0)
	for pid, uids := range repo.db.assignments {
		for _, uid := range uids {
			if uid == userID {
				if prj, ok := repo.db.table[pid]; ok {
					projects = append(projects, *prj)
				}
				break
			}
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Deadline.Before(projects[j].Deadline) })
	return projects, nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[prj.ID]
	if !ok {
		return project.ErrNotFound
	}
	orig.Name = prj.Name
	orig.Description = prj.Description
	orig.Deadline = prj.Deadline
	return nil
}

func (repo *projectRepository) DeleteProject(ctx context.Context, id string) error {
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
