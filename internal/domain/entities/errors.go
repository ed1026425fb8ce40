package entities

import "errors"

// Domain errors
var (
	// Input errors
	ErrEmptyText = errors.New("text is empty")

	// Classifier errors
	ErrLabelOutOfRange    = errors.New("classifier label out of range")
	ErrPredictionMismatch = errors.New("classifier returned a different number of predictions")

	// Chunking errors
	ErrInvalidBudget = errors.New("token budget must be positive")
)
