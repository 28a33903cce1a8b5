package gopher

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidURL          = errors.New("invalid gopher url")
	ErrConnection          = errors.New("connection failed")
	ErrTimeout             = errors.New("timed out")
	ErrTooLarge            = errors.New("response too large")
	ErrSearchInputRequired = errors.New("search query required")
)

// TimeoutError reports a step that produced nothing within the timeout.
type TimeoutError struct {
	Step    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: server did not respond within %s", e.Step, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
