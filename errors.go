package settings

import (
	"errors"
	"fmt"
)

// ErrHostRequired is returned by New when no host adapter is supplied.
var ErrHostRequired = errors.New("settings: host is required")

// StoreError reports a failed read or write against the resolved storage.
type StoreError struct {
	Op     string
	Mode   Mode
	Option string
	Err    error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: %s %s option %q: %v", e.Op, e.Mode.Scope(), e.Option, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
