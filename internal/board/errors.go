package board

import "errors"

// ErrNotFound indicates the requested greeting id is absent.
var ErrNotFound = errors.New("greeting not found")

// ErrEmptyBody indicates a greeting or reply was submitted without text.
var ErrEmptyBody = errors.New("message body is empty")
