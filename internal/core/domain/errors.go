package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrFetch  = errors.New("fetch failed")
	ErrParse  = errors.New("parse failed")
	ErrBuild  = errors.New("build failed")
	ErrNotify = errors.New("notify failed")
	ErrConfig = errors.New("invalid configuration")

	// ErrMissingOutput marks a scraper run that exited cleanly without writing its output.
	ErrMissingOutput = errors.New("expected output file not found")
)

// FetchError is returned by the fetch step.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Op, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// ParseError is returned when a dataset or input table cannot be read.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Op, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// BuildError is returned when a report artifact cannot be written.
type BuildError struct {
	Op  string
	Err error
}

func (e *BuildError) Error() string { return fmt.Sprintf("build %s: %v", e.Op, e.Err) }
func (e *BuildError) Unwrap() error { return e.Err }
func (e *BuildError) Is(target error) bool {
	return target == ErrBuild
}

// NotifyError is returned when the message transport fails.
type NotifyError struct {
	Op  string
	Err error
}

func (e *NotifyError) Error() string { return fmt.Sprintf("notify %s: %v", e.Op, e.Err) }
func (e *NotifyError) Unwrap() error { return e.Err }
func (e *NotifyError) Is(target error) bool {
	return target == ErrNotify
}

// ConfigError is fatal and never retried.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}
func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// IsRetryable reports whether err is worth another attempt.
// Only fetch and notify failures are transient; config errors never are.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrConfig) {
		return false
	}
	return errors.Is(err, ErrFetch) || errors.Is(err, ErrNotify)
}
