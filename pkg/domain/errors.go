package domain

import "errors"

const CompletionFallback = "I'm having trouble connecting to the travel planning service. Please try again later."

var (
	ErrCompletionUnavailable = errors.New("completion unavailable")
	ErrNotFound              = errors.New("not found")
	ErrVersionConflict       = errors.New("session version conflict")
	ErrStageNotReached       = errors.New("stage not reached")
)
