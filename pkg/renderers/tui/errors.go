package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C) or declined to
	// submit.
	ErrAborted = errors.New("tui: aborted")
	// ErrSubmitRejected is returned when the answers are still invalid after
	// the configured number of submit attempts. It wraps the last
	// *validation.FormError.
	ErrSubmitRejected = errors.New("tui: submit rejected")
)
