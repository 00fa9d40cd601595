package domain

import "time"

// Session is one refresh-token grant. The opaque refresh token itself is
// never stored, only its hash; presenting the token proves possession.
type Session struct {
	RefreshTokenHash string    `json:"refresh_token_hash"`
	Username         string    `json:"username"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// IsExpired reports whether the session's refresh window has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
