package session

import "errors"

// Sentinel errors
var (
	ErrRowNotFound     = errors.New("row not found")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrInboxFull       = errors.New("injection inbox is full")
	ErrEmptyInjection  = errors.New("injected expression is empty")
)
