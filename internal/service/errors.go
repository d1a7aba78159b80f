package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput matches an InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProbeExhausted matches an ExhaustedError.
	ErrProbeExhausted = errors.New("all probe strategies failed")
)

// Attempt is one strategy that was tried and failed.
type Attempt struct {
	Strategy string `json:"strategy"`
	Err      error  `json:"-"`
}

func (a Attempt) String() string {
	return a.Strategy + ": " + a.Err.Error()
}

// ExhaustedError is returned when every candidate strategy failed.
// Attempts are in the order they were tried.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrProbeExhausted.Error() + ": no strategy was attempted"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s: [%s]", ErrProbeExhausted, strings.Join(parts, "; "))
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrProbeExhausted
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// InvalidInputError is returned when the backend reports that the URL itself
// is malformed. No further strategies are tried after it.
type InvalidInputError struct {
	Strategy string
	Err      error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidInput, e.Err)
}

// Detail is the backend's description of the problem.
func (e *InvalidInputError) Detail() string {
	return e.Err.Error()
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

var (
	// ErrJobNotFound is returned for an unknown job id.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotReady is returned when a download references a probe that has not succeeded.
	ErrJobNotReady = errors.New("probe job not finished")
)
