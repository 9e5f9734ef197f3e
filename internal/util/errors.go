package util

import "fmt"

// WrapError annotates err with a short operation description. Returns nil
// when err is nil so call sites can wrap unconditionally.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", operation, err)
}
