package store

import "errors"

// Sentinel errors. The service layer maps these onto user-facing error
// codes; the store never speaks HTTP.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateUser  = errors.New("user already exists")
	ErrDuplicateEmail = errors.New("email already registered")

	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("user already reviewed this book")

	ErrListNotFound = errors.New("reading list not found")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)
