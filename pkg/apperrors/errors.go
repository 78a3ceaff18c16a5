package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrBadResponse   = errors.New("malformed upstream response")
	ErrUnknownSource = errors.New("unknown source")
)
