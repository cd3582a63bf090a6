package store

import "fmt"

// CacheWriteError is returned when a cache document or bundle cannot be written. Nothing is left
// at Path in that case.
type CacheWriteError struct {
	Path  string
	Cause error
}

func (err CacheWriteError) Error() string {
	return fmt.Sprintf("writing cache file %s: %v", err.Path, err.Cause)
}

func (err CacheWriteError) Unwrap() error {
	return err.Cause
}

// ParseError is logged when a cached document is malformed. The document is treated as a miss.
type ParseError struct {
	Path  string
	Cause error
}

func (err ParseError) Error() string {
	return fmt.Sprintf("malformed cache file %s: %v", err.Path, err.Cause)
}

func (err ParseError) Unwrap() error {
	return err.Cause
}

// UnknownLibraryError is returned for library names other than services and components.
type UnknownLibraryError struct {
	Name string
}

func (err UnknownLibraryError) Error() string {
	return fmt.Sprintf("unknown library %q", err.Name)
}
