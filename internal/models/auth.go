package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest exchanges a shared client key for a short-lived access token.
// There is no per-user account: the key identifies the calling client.
type LoginRequest struct {
	ClientID  string `json:"client_id" validate:"required"`
	ClientKey string `json:"client_key" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	ClientID    string    `json:"client_id"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens. There is no role
// hierarchy in the stateless client-credential flow: possession of a valid
// token is the only authorization check the middleware performs.
type JWTClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}
