package store

import (
	"errors"
	"fmt"
)

// Load failure classes. Use errors.Is on the error returned by Load.
var (
	ErrMissingSource = errors.New("source not found")
	ErrMissingColumn = errors.New("missing required column")
	ErrMalformed     = errors.New("malformed source")
)

// LoadError reports why a dataset could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("store: load %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(path string, class error, format string, args ...any) *LoadError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		return &LoadError{Path: path, Err: class}
	}
	return &LoadError{Path: path, Err: fmt.Errorf("%w: %s", class, msg)}
}
