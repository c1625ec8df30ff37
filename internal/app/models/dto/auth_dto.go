package dto

// LoginRequest represents a staff login request
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"gatehouse"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// LoginResponse carries the issued session token and the authenticated user
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn" example:"86400"`
	User      UserResponse `json:"user"`
}
