package recruiting

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFolderCycle    = errors.New("a folder cannot be moved into itself or one of its subfolders")
	ErrFolderNotEmpty = errors.New("the folder or one of its subfolders still holds candidates")
	ErrPostingClosed  = errors.New("the posting no longer accepts applications")
	ErrPostingFull    = errors.New("the posting reached its maximum number of CVs")
)

// IsConflict reports whether err is a rule violation caused by the current state of the records.
func IsConflict(err error) bool {
	for _, target := range []error{ErrFolderCycle, ErrFolderNotEmpty, ErrPostingClosed, ErrPostingFull} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when user input is missing or malformed.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
