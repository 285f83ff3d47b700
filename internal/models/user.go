package models

import (
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Email     *string   `json:"email" db:"email"`
	FirstName *string   `json:"first_name" db:"first_name"`
	LastName  *string   `json:"last_name" db:"last_name"`
	Admin     bool      `json:"admin" db:"admin"`
	Teacher   bool      `json:"teacher" db:"teacher"`
	Pending   bool      `json:"pending" db:"pending"`
	IconShape string    `json:"icon_shape" db:"icon_shape"`
	IconColor string    `json:"icon_color" db:"icon_color"`
	Initials  *string   `json:"initials" db:"initials"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileComplete reports whether both name fields are set and non-blank.
func (u *User) ProfileComplete() bool {
	return u.FirstName != nil && strings.TrimSpace(*u.FirstName) != "" &&
		u.LastName != nil && strings.TrimSpace(*u.LastName) != ""
}
