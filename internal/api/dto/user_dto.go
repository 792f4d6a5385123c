package dto

import "github.com/spec-kit/board-service/internal/domain"

// SignUpUserRequest payload for POST /user/signup.
type SignUpUserRequest struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for both login flows.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GetUserResponse is the public view of an account.
type GetUserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
}

// NewGetUserResponse maps a domain user, dropping credentials.
func NewGetUserResponse(u *domain.User) GetUserResponse {
	if u == nil {
		return GetUserResponse{}
	}
	return GetUserResponse{Email: u.Email, Name: u.Name, Age: u.Age}
}

// NewGetUserResponses maps a slice of users.
func NewGetUserResponses(users []domain.User) []GetUserResponse {
	out := make([]GetUserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewGetUserResponse(&users[i]))
	}
	return out
}
