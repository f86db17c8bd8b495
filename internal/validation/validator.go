// Package validation checks raw form values before they reach the record
// store. Every function either returns an accepted, normalised value or an
// Errors batch, never both.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mamadbah2/partyhire/internal/domain/models"
)

const (
	maxNameLength = models.MaxNameLength
	minQuantity   = models.MinQuantity
	maxQuantity   = models.MaxQuantity
	receiptDigits = 4
)

// Labels shown to the user in front of each message.
const (
	LabelFirstName     = "First Name"
	LabelLastName      = "Last Name"
	LabelItem          = "Item Hired"
	LabelQuantity      = "Amount Hired"
	LabelReceiptNumber = "Receipt Number"
)

// ValidateSubmission checks every field of a hire form independently and
// returns the normalised submission or all failures together.
func ValidateSubmission(in models.SubmissionInput) (models.Submission, error) {
	var errs Errors

	firstName := strings.TrimSpace(in.FirstName)
	if msg, failed := firstFailure(firstName, nameRules(LabelFirstName)...); failed {
		errs.Add(FieldFirstName, msg)
	}

	lastName := strings.TrimSpace(in.LastName)
	if msg, failed := firstFailure(lastName, nameRules(LabelLastName)...); failed {
		errs.Add(FieldLastName, msg)
	}

	item, msg, ok := validateItem(in.Item)
	if !ok {
		errs.Add(FieldItem, msg)
	}

	var quantity int
	if msg, failed := firstFailure(strings.TrimSpace(in.Quantity), quantityRules(LabelQuantity, &quantity)...); failed {
		errs.Add(FieldQuantity, msg)
	}

	if err := errs.orNil(); err != nil {
		return models.Submission{}, err
	}

	return models.Submission{
		FirstName: NormalizeName(firstName),
		LastName:  NormalizeName(lastName),
		Item:      item,
		Quantity:  quantity,
	}, nil
}

// ValidateReceiptNumber checks the format of a receipt number typed for
// deletion. Whether such a receipt exists is up to the store.
func ValidateReceiptNumber(raw string) (int, error) {
	var number int
	if msg, failed := firstFailure(strings.TrimSpace(raw), receiptNumberRules(LabelReceiptNumber, &number)...); failed {
		return 0, Errors{{Field: FieldReceiptNumber, Message: msg}}
	}
	return number, nil
}

// ValidateRecord checks a record read back from disk against the same
// invariants a fresh submission has to satisfy.
func ValidateRecord(r models.Record) error {
	var errs Errors

	if r.ReceiptNumber < models.MinReceiptNumber || r.ReceiptNumber > models.MaxReceiptNumber {
		errs.Add(FieldReceiptNumber, fmt.Sprintf("%s %d is outside %d-%d.", LabelReceiptNumber, r.ReceiptNumber, models.MinReceiptNumber, models.MaxReceiptNumber))
	}
	if msg, failed := firstFailure(strings.TrimSpace(r.FirstName), nameRules(LabelFirstName)...); failed {
		errs.Add(FieldFirstName, msg)
	}
	if msg, failed := firstFailure(strings.TrimSpace(r.LastName), nameRules(LabelLastName)...); failed {
		errs.Add(FieldLastName, msg)
	}
	if item, ok := models.ParseItem(string(r.Item)); !ok || item != r.Item {
		errs.Add(FieldItem, fmt.Sprintf("%s %q is not in the catalog.", LabelItem, r.Item))
	}
	if r.Quantity < minQuantity || r.Quantity > maxQuantity {
		errs.Add(FieldQuantity, LabelQuantity+" must be between 1 and 500.")
	}

	return errs.orNil()
}

// NormalizeName collapses whitespace and capitalises each word:
// "  jOHN   paul " becomes "John Paul". Only a leading letter is upper-cased,
// so "123ABC" becomes "123abc".
func NormalizeName(name string) string {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	words := strings.Fields(name)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		head := w[:size]
		if unicode.IsLetter(first) {
			head = upper.String(head)
		}
		words[i] = head + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

func validateItem(raw string) (models.Item, string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", LabelItem + " is required and cannot be left blank.", false
	}

	item, ok := models.ParseItem(raw)
	if !ok {
		names := make([]string, 0, len(models.Catalog()))
		for _, it := range models.Catalog() {
			names = append(names, string(it))
		}
		return "", fmt.Sprintf("%s must be one of: %s.", LabelItem, strings.Join(names, ", ")), false
	}
	return item, "", true
}
