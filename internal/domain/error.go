package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflicting state transition")
	ErrAlreadyExists   = errors.New("entity already exists")
)
