package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxNameLength  = 255  // single path component, bytes
	MaxQueryLength = 1024 // search query, bytes
)

// ErrInvalidName is returned for names that cannot be a single path component.
var ErrInvalidName = errors.New("invalid name")

// ValidateName checks that name can be used as one child of a directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidName, MaxNameLength)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidName, name)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidName)
	}
	return nil
}

// ValidateQuery checks the length of a search query.
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return fmt.Errorf("query exceeds %d bytes", MaxQueryLength)
	}
	return nil
}

// CopyName suggests the default name for a duplicate of name: "<name> copy".
func CopyName(name string) string {
	return name + " copy"
}
