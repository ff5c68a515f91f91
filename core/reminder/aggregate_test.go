package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	now := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := []AssignmentRow{
		{UserID: "1", Username: "Ann", Email: "a@x.com", ProjectID: "P1", ProjectName: "P1", Deadline: now.AddDate(0, 0, 2)},
		{UserID: "1", Username: "Ann", Email: "a@x.com", ProjectID: "P2", ProjectName: "P2", Deadline: now.AddDate(0, 0, 10)},
		{UserID: "2", Username: "Bo", Email: "b@x.com", ProjectID: "P3", ProjectName: "P3", Deadline: now.AddDate(0, 0, -1)},
	}

	bundles, conflicts := Aggregate(rows, now)

	assert.Empty(t, conflicts)
	assert.Len(t, bundles, 2)

	ann := bundles["1"]
	if assert.NotNil(t, ann) {
		assert.Equal(t, "Ann", ann.Username)
		assert.Equal(t, "a@x.com", ann.Email)
		if assert.Len(t, ann.Projects, 2) {
			// input row order is preserved
			assert.Equal(t, "P1", ann.Projects[0].ID)
			assert.Equal(t, 2, ann.Projects[0].DaysLeft)
			assert.Equal(t, "P2", ann.Projects[1].ID)
			assert.Equal(t, 10, ann.Projects[1].DaysLeft)
		}
	}

	bo := bundles["2"]
	if assert.NotNil(t, bo) {
		if assert.Len(t, bo.Projects, 1) {
			assert.Equal(t, -1, bo.Projects[0].DaysLeft)
		}
	}
}

func TestAggregate_empty(t *testing.T) {
	bundles, conflicts := Aggregate(nil, time.Now())
	assert.Empty(t, bundles)
	assert.Empty(t, conflicts)
}

func TestAggregate_idempotent(t *testing.T) {
	now := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []AssignmentRow{
		{UserID: "1", Username: "Ann", Email: "a@x.com", ProjectID: "P1", ProjectName: "Alpha", Deadline: now.AddDate(0, 0, 2)},
		{UserID: "2", Username: "Bo", Email: "b@x.com", ProjectID: "P2", ProjectName: "Beta", Deadline: now.AddDate(0, 0, 7)},
		{UserID: "1", Username: "Ann", Email: "a@x.com", ProjectID: "P3", ProjectName: "Gamma", Deadline: now},
	}

	first, _ := Aggregate(rows, now)
	second, _ := Aggregate(rows, now)
	assert.Equal(t, first, second)
}

func TestAggregate_conflictingIdentity(t *testing.T) {
	now := time.Now()
	rows := []AssignmentRow{
		{UserID: "1", Username: "Ann", Email: "a@x.com", ProjectID: "P1", ProjectName: "Alpha", Deadline: now},
		{UserID: "1", Username: "Anna", Email: "ann@x.com", ProjectID: "P2", ProjectName: "Beta", Deadline: now},
	}

	bundles, conflicts := Aggregate(rows, now)

	// first-seen identity wins; both rows still land in the bundle
	ann := bundles["1"]
	if assert.NotNil(t, ann) {
		assert.Equal(t, "Ann", ann.Username)
		assert.Equal(t, "a@x.com", ann.Email)
		assert.Len(t, ann.Projects, 2)
	}

	if assert.Len(t, conflicts, 2) {
		assert.Equal(t, "username", conflicts[0].Field)
		assert.Equal(t, "Ann", conflicts[0].Kept)
		assert.Equal(t, "Anna", conflicts[0].Got)
		assert.Equal(t, "email", conflicts[1].Field)
	}
}

func TestAggregate_bundlePerDistinctUser(t *testing.T) {
	now := time.Now()
	rows := []AssignmentRow{
		{UserID: "u1", Username: "a", Email: "a@x", ProjectID: "P1", Deadline: now},
		{UserID: "u2", Username: "b", Email: "b@x", ProjectID: "P2", Deadline: now},
		{UserID: "u1", Username: "a", Email: "a@x", ProjectID: "P3", Deadline: now},
		{UserID: "u3", Username: "c", Email: "c@x", ProjectID: "P4", Deadline: now},
		{UserID: "u2", Username: "b", Email: "b@x", ProjectID: "P5", Deadline: now},
	}

	bundles, _ := Aggregate(rows, now)

	assert.Len(t, bundles, 3)
	assert.Len(t, bundles["u1"].Projects, 2)
	assert.Len(t, bundles["u2"].Projects, 2)
	assert.Len(t, bundles["u3"].Projects, 1)
}
