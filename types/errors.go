package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned for caller mistakes such as a blank key
	// or a missing configuration.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfiguration is returned when a limit or window is not positive.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// ValidateKey rejects empty and whitespace-only keys.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key cannot be empty or whitespace: %w", ErrInvalidArgument)
	}
	return nil
}
