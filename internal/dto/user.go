package dto

import (
	"time"

	"github.com/yukikurage/team-task-board/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the body of POST /user
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
}

// AuthRequest is the body of POST /auth
type AuthRequest struct {
	UID string `json:"uid" binding:"required"`
}

// MessageResponse is returned by endpoints with nothing else to say
type MessageResponse struct {
	Message string `json:"message"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		UID:       user.UID,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
