package api

import "time"

type Empty struct{}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	UserID                string    `json:"user_id"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expired_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expired_at"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgottenPasswordRequest struct {
	Email string `json:"email"`
}

// ForgottenPasswordResponse acknowledges a reset request. The token itself
// only reaches the account owner through the notifier.
type ForgottenPasswordResponse struct {
	ExpiresAt time.Time `json:"expired_at"`
}

type UpdatePasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password" binding:"required,min=8"`
}

type CreateUserRequest struct {
	Lastname  string   `json:"lastname"`
	Firstname string   `json:"firstname"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Scopes    []string `json:"scopes,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Lastname  string    `json:"lastname"`
	Firstname string    `json:"firstname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserIDRequest struct {
	ID string `json:"id"`
}

// ListUsersRequest selects a page; Sort names a column, Desc reverses it.
type ListUsersRequest struct {
	Page int    `json:"page" form:"page"`
	Size int    `json:"size" form:"size"`
	Sort string `json:"sort" form:"sort"`
	Desc bool   `json:"desc" form:"desc"`
}

type ListUsersResponse struct {
	Data  []User `json:"data"`
	Total int64  `json:"total"`
}

type UserScopeRequest struct {
	UserID  string `json:"user_id"`
	ScopeID string `json:"id"`
}

type ScopesResponse struct {
	Scopes []string `json:"scopes"`
}

type ScopeRequest struct {
	ID string `json:"id"`
}

type Scope struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type ListScopesResponse struct {
	Data []Scope `json:"data"`
}

// ErrorResponse is the body of every failed REST call.
type ErrorResponse struct {
	Error string `json:"error"`
}
