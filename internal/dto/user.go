package dto

import (
	"time"

	"github.com/sunubank/bankapi/internal/core/domain"
)

// CreateUserRequest defines the data needed to create a login identity.
type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required,max=255"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,strongpwd"`
	Role     domain.Role `json:"role" binding:"required,oneof=admin client"`
}

// UpdateUserRequest defines the mutable fields of a user.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,strongpwd"`
	IsActive *bool   `json:"isActive"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// UserResponse defines the data returned for a user. Credentials never leave
// the service layer.
type UserResponse struct {
	UserID    string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ToUserResponse converts a domain.User to its response shape.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.LastUpdatedAt,
	}
}

// ToListUserResponse converts a slice of domain users.
func ToListUserResponse(users []domain.User) []UserResponse {
	res := make([]UserResponse, len(users))
	for i := range users {
		res[i] = ToUserResponse(&users[i])
	}
	return res
}
