package store

import "errors"

// Connection errors
var (
	ErrEmptyDatabaseURL    = errors.New("database URL cannot be empty")
	ErrInvalidDatabaseURL  = errors.New("invalid database URL")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
	ErrConnectionFailed    = errors.New("failed to connect to database")
)

// Persistence errors
var (
	ErrSessionNotFound = errors.New("saved session not found")
	ErrEmptyName       = errors.New("session name cannot be empty")
)
