package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_SetPassword(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword("s3cretW0rd!"))
	assert.NotEmpty(t, usr.PasswordHash)

	assert.NoError(t, usr.CheckPassword("s3cretW0rd!"))
	assert.Error(t, usr.CheckPassword("wrong"))
}

func TestUser_IsAdmin(t *testing.T) {
	admin := User{PermissionLevel: PermissionAdmin}
	pleb := User{PermissionLevel: PermissionUser}
	none := User{}

	assert.True(t, admin.IsAdmin())
	assert.False(t, pleb.IsAdmin())
	assert.False(t, none.IsAdmin())
}
