package entity

import "errors"

var (
	// Caption errors
	ErrInvalidCaption  = errors.New("invalid caption")
	ErrInvalidColor    = errors.New("invalid color")
	ErrTooManyCaptions = errors.New("too many captions")

	// Image errors
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooLarge     = errors.New("image too large")

	// Job errors
	ErrJobNotFound = errors.New("job not found")
	ErrJobNotReady = errors.New("job is not completed yet")
	ErrJobFailed   = errors.New("job failed")
)
