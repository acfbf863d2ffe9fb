package core

import "errors"

var (
	// ErrNotFound is returned by repositories when a key has no value.
	ErrNotFound = errors.New("not found")

	// ErrRecognizerBusy is returned when starting a recognizer that is
	// already running. Callers treat it as a benign no-op.
	ErrRecognizerBusy = errors.New("recognizer already running")
)
