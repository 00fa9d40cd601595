package domain

import "time"

// User is a registered reader account.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // argon2id encoded hash, never serialized to clients
	CreatedAt    time.Time `json:"created_at"`

	Preferences UserPreferences `json:"preferences"`
}

// UserPreferences holds the reader's declared tastes.
type UserPreferences struct {
	FavoriteGenres  []string `json:"favorite_genres,omitempty"`
	FavoriteAuthors []string `json:"favorite_authors,omitempty"`
}
