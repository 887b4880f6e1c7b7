package converter

import (
	"errors"
	"fmt"
	"strings"
)

var errInvalidEncoding = errors.New("file is not valid UTF-8 text")

// UnsupportedTypeError reports an upload whose extension has no converter
type UnsupportedTypeError struct {
	Extension string
	Supported []string
}

func (e *UnsupportedTypeError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file type %s (supported: %s)", ext, strings.Join(e.Supported, ", "))
}
