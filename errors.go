package dataloader

import (
	"errors"
	"fmt"
)

// NotLoadedError is returned by Get for a key that was never loaded and run.
// Calling Get before the corresponding Run is a programmer error; it is
// reported immediately instead of returning a placeholder value.
type NotLoadedError struct {
	Group any
	Key   any
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("dataloader: key %v in group %v has not been loaded and run", e.Key, e.Group)
}

// KeyNotFoundError is cached for a requested key that the batch fetch
// function omitted from its result, when the source uses FailMissing.
type KeyNotFoundError struct {
	Group any
	Key   any
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("dataloader: key %v not found in group %v", e.Key, e.Group)
}

// UnknownSourceError is returned when an operation references a source name
// that was never registered on the Loader.
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("dataloader: unknown source %q", e.Name)
}

// IsNotLoaded reports whether err is a NotLoadedError.
func IsNotLoaded(err error) bool {
	var notLoaded *NotLoadedError
	return errors.As(err, &notLoaded)
}

// IsKeyNotFound reports whether err is a KeyNotFoundError.
func IsKeyNotFound(err error) bool {
	var notFound *KeyNotFoundError
	return errors.As(err, &notFound)
}

// IsUnknownSource reports whether err is an UnknownSourceError.
func IsUnknownSource(err error) bool {
	var unknown *UnknownSourceError
	return errors.As(err, &unknown)
}
