package sqlxrepos

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx/reflectx"

	"github.com/trezcool/kazi/core/reminder"
)

// Every column selected by FetchAssignments must resolve to an AssignmentRow
// field under sqlx's default mapper, otherwise scanning fails on the first row.
func TestAssignmentRowColumnMapping(t *testing.T) {
	mapper := reflectx.NewMapperFunc("db", strings.ToLower)

	cols := []string{"user_id", "username", "email", "project_id", "project_name", "deadline"}
	traversals := mapper.TraversalsByName(reflect.TypeOf(reminder.AssignmentRow{}), cols)
	for i, traversal := range traversals {
		if len(traversal) == 0 {
			t.Errorf("missing destination name %s in reminder.AssignmentRow", cols[i])
		}
	}
}
