package main

import "errors"

// Sentinel errors for command operations
var (
	ErrNoInput            = errors.New("no expressions given: pass them as arguments or with --file")
	ErrInvalidExpressions = errors.New("some expressions cannot be evaluated")
	ErrFailedExpressions  = errors.New("some expressions failed to render")
	ErrInvalidViewport    = errors.New("viewport needs four values: x_min,x_max,y_min,y_max")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrInvalidSessionID   = errors.New("invalid session id")
	ErrInvalidSetCommand  = errors.New("invalid :set command, expected ':set name=value'")
)
