package dto

import "time"

// LoginRequest carries credentials as JSON or form fields.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse describes the pair set on the response headers.
type LoginResponse struct {
	Subject          string    `json:"subject"`
	Roles            []string  `json:"roles"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// RefreshResponse is returned by the explicit refresh endpoint.
type RefreshResponse struct {
	Rotated          bool       `json:"rotated"`
	Subject          string     `json:"subject"`
	AccessExpiresAt  *time.Time `json:"accessExpiresAt,omitempty"`
	RefreshExpiresAt *time.Time `json:"refreshExpiresAt,omitempty"`
}

// IdentityResponse exposes a subject and its roles.
type IdentityResponse struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// ClaimsResponse is the introspection view of a token.
type ClaimsResponse struct {
	Subject        string    `json:"subject"`
	Roles          []string  `json:"roles"`
	IssuingContext string    `json:"issuingContext"`
	ExpiresAt      time.Time `json:"expiresAt"`
}
