package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Field identifiers used in FieldError.Field.
const (
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldItem          = "item"
	FieldQuantity      = "quantity"
	FieldReceiptNumber = "receipt_number"
)

// FieldError is a single rejected field with a message meant for the user.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the ordered batch of validation failures for one request.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a failure for field.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Messages returns the user facing messages in the order they were found.
func (e Errors) Messages() []string {
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Message)
	}
	return messages
}

// Numbered renders the messages as "1. ..." lines, the way the form shows
// them in a single warning.
func (e Errors) Numbered() string {
	lines := make([]string, 0, len(e))
	for i, fe := range e {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, fe.Message))
	}
	return strings.Join(lines, "\n")
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Extract returns the Errors wrapped in err, or nil.
func Extract(err error) Errors {
	var ve Errors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// IsValidationError reports whether err carries validation failures.
func IsValidationError(err error) bool {
	return Extract(err) != nil
}
