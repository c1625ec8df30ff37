package models

import "time"

// User defines the staff account model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Username    string     `json:"username" db:"username" example:"gatehouse"`
	Email       string     `json:"email" db:"email" example:"gatehouse@campus.edu"`
	Password    string     `json:"-" db:"password"` // bcrypt hash, excluded from JSON
	Role        RoleType   `json:"role" db:"role" example:"guard"`
	Active      bool       `json:"active" db:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
