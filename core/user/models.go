package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kazi/core"
)

// Permission levels
const (
	PermissionAdmin = "admin"
	PermissionUser  = "user"
)

var PermissionLevels = []string{PermissionAdmin, PermissionUser}

type User struct {
	ID              string    `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	Email           string    `json:"email" db:"email"`
	PermissionLevel string    `json:"permission_level" db:"permission_level"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	PasswordHash    []byte    `json:"-" db:"password_hash"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin       null.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.PermissionLevel == PermissionAdmin
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	PermissionLevel string `json:"permission_level" validate:"omitempty,permlevel"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.PermissionLevel == "" {
		nu.PermissionLevel = PermissionUser
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateProfile defines what information may be provided to modify an existing User.
// Empty fields are left untouched.
type UpdateProfile struct {
	Username        string `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	PermissionLevel string `json:"permission_level" validate:"omitempty,permlevel"`
}

func (up *UpdateProfile) Validate(ctx context.Context, validate *validator.Validate, svc Service, usr User) error {
	up.Username = core.CleanString(up.Username, true /* lower */)
	up.Email = core.CleanString(up.Email, true /* lower */)

	if err := validate.Struct(up); err != nil {
		return err
	}
	if up.Username == "" && up.Email == "" && up.PermissionLevel == "" {
		return core.NewValidationError(errNothingToUpdate)
	}
	return svc.CheckUniqueness(ctx, up.Username, up.Email, usr)
}

// ChangePassword carries a password change request for the authenticated User.
type ChangePassword struct {
	NewPassword        string `json:"new_password" validate:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

func (cp *ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}
