package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDuplicatePolicy is returned for an on_duplicate value we do not recognise.
var ErrUnknownDuplicatePolicy = errors.New("unknown duplicate policy")

// CommandType enumerates the user actions the dispatcher understands.
type CommandType string

const (
	CommandSubmit  CommandType = "submit"
	CommandDelete  CommandType = "delete"
	CommandList    CommandType = "list"
	CommandReset   CommandType = "reset"
	CommandUnknown CommandType = "unknown"
)

// DuplicatePolicy decides what a submission does when the same customer
// already hires the same item.
type DuplicatePolicy string

const (
	// DuplicateAsk refuses the submission and reports the existing record so
	// the user can confirm.
	DuplicateAsk DuplicatePolicy = "ask"
	// DuplicateUpdate replaces the quantity of the newest matching record.
	DuplicateUpdate DuplicatePolicy = "update"
	// DuplicateInsert appends a new record regardless of matches.
	DuplicateInsert DuplicatePolicy = "insert"
)

// ParseDuplicatePolicy maps a user supplied value onto a policy. An empty
// value means DuplicateAsk.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	switch normalized := DuplicatePolicy(strings.ToLower(strings.TrimSpace(value))); normalized {
	case "":
		return DuplicateAsk, nil
	case DuplicateAsk, DuplicateUpdate, DuplicateInsert:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDuplicatePolicy, value)
	}
}

// Command is one user action against the record store.
type Command struct {
	Type          CommandType
	Submission    SubmissionInput
	ReceiptNumber string
	OnDuplicate   DuplicatePolicy
}

// Result is what a successfully handled command hands back for rendering.
type Result struct {
	Message   string
	Record    *Record
	Records   []Record
	Updated   bool
	NextEntry int
}
