package dto

import "github.com/yukikurage/team-todo-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           uint64              `json:"id"`
	Username     string              `json:"username"`
	FullName     string              `json:"full_name"`
	ProfileImage string              `json:"profile_image"`
	AuthProvider models.AuthProvider `json:"auth_provider"`
}

// AuthResponse is returned by register, login and the OAuth token exchange.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:           user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		ProfileImage: user.ProfileImage,
		AuthProvider: user.AuthProvider,
	}
}
