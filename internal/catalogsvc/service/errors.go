package service

import "errors"

// Error kinds surfaced to the transport boundary. Handlers map these to
// HTTP statuses with errors.Is; message text is never inspected.
var (
	ErrNotFound           = errors.New("record not found")
	ErrConflict           = errors.New("duplicate record")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
