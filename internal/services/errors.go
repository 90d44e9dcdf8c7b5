package services

import "errors"

// Cleaning service errors
var (
	ErrNoExtractsFound = errors.New("no survey extracts found")
	ErrIncompatibleRun = errors.New("cleaned tables have different columns")
)
