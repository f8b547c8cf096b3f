package models

import "time"

// JWTClaims holds the verified claims of an access token
type JWTClaims struct {
	Sub       string    `json:"sub"`
	Issuer    string    `json:"iss"`
	Audience  []string  `json:"aud,omitempty"`
	Scope     string    `json:"scope,omitempty"`
	ExpiresAt time.Time `json:"exp"`
}
