package models

import "errors"

// Domain error kinds. Services wrap these with context; the API edge maps
// them to HTTP status codes with errors.Is.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("username already taken")
	ErrTweetNotFound = errors.New("tweet not found")
	ErrBadInput      = errors.New("bad input")

	// ErrUserOwnsTweets rejects deleting a user who is still the owner of
	// at least one tweet.
	ErrUserOwnsTweets = errors.New("user still owns tweets")
)
