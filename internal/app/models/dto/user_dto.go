package dto

import (
	"time"

	"github.com/derick/campusqr/internal/app/models"
)

// UserResponse is the public view of a staff account
type UserResponse struct {
	ID          int64      `json:"id" example:"1"`
	Username    string     `json:"username" example:"gatehouse"`
	Email       string     `json:"email" example:"gatehouse@campus.edu"`
	Role        string     `json:"role" example:"guard"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        string(user.Role),
		Active:      user.Active,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// CreateUserRequest represents a request to create a staff account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required" example:"gatehouse"`
	Email    string `json:"email" binding:"required,email" example:"gatehouse@campus.edu"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin guard" example:"guard"`
}

// UpdateUserRequest represents a request to update a staff account.
// Password is optional; empty means do not change it.
type UpdateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role" binding:"required,oneof=admin guard"`
	Active   *bool  `json:"active,omitempty"`
}

// UserStatsResponse summarizes staff accounts for the admin screen
type UserStatsResponse struct {
	ByRole      map[string]int64 `json:"byRole"`
	ActiveCount int64            `json:"activeCount"`
	TotalCount  int64            `json:"totalCount"`
	RecentCount int64            `json:"recentCount"` // accounts created in the last 30 days
}
