package models

// SessionClaims represents the claims extracted from a session token issued
// by the external auth service.
type SessionClaims struct {
	Sub      string `json:"sub"`      // Subject (user ID)
	Username string `json:"username"` // Username
	Email    string `json:"email"`    // User email
	Exp      int64  `json:"exp"`      // Expiration time
	Iat      int64  `json:"iat"`      // Issued at
	Iss      string `json:"iss"`      // Issuer
	Aud      string `json:"aud"`      // Audience
}
