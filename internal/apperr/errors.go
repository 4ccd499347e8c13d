// Package apperr holds the sentinel errors shared by the service and its adapters.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidTag  = errors.New("invalid tag")
	ErrInvalidPath = errors.New("invalid path")
)
