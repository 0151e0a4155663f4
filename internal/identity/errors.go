package identity

import "errors"

// ErrAlreadyExists indicates a registration for an email that is already
// taken.
var ErrAlreadyExists = errors.New("account already exists")

// ErrInvalidCredentials indicates an unknown email or a password mismatch.
// Callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")
