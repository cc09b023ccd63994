package services

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSession is returned for a session token that fails verification.
	ErrInvalidSession = errors.New("invalid session token")
	// ErrSessionNotFound is returned when a verified token has no live session behind it.
	ErrSessionNotFound = errors.New("session not found")
)
