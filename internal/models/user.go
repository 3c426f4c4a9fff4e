package models

import "github.com/go-playground/validator/v10"

// User rows are created lazily on first sign-in. Username and email are
// unique at the database level; violations surface as conflicts, not as
// validation errors.
type User struct {
	ID        string `db:"id" json:"id"`
	Username  string `db:"username" json:"username" validate:"required,max=64"`
	Email     string `db:"email" json:"email" validate:"required,email"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}
