package dummydb

import (
	"sync"

	"github.com/trezcool/kazi/core/project"
	"github.com/trezcool/kazi/core/push"
	"github.com/trezcool/kazi/core/user"
)

type (
	DB struct {
		user *userTable
		prj  *projectTable
		push *pushTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
		order []string // insertion order
	}

	projectTable struct {
		sync.RWMutex
		table       map[string]*project.Project
		order       []string            // insertion order
		assignments map[string][]string // project ID -> user IDs
	}

	pushTable struct {
		sync.RWMutex
		table map[string]*push.Subscription
		order []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		prj: &projectTable{
			table:       make(map[string]*project.Project),
			assignments: make(map[string][]string),
		},
		push: &pushTable{table: make(map[string]*push.Subscription)},
	}
	return db, nil
}
