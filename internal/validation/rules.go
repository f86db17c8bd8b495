package validation

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// rule is one check in a field's hierarchy. Rules for a field run in order
// and the first failure is the only one reported for that field.
type rule struct {
	check   func(value string) bool
	message string
}

func firstFailure(value string, rules ...rule) (string, bool) {
	for _, r := range rules {
		if !r.check(value) {
			return r.message, true
		}
	}
	return "", false
}

func notBlank(value string) bool {
	return value != ""
}

func withoutSpaces(value string) string {
	return strings.Join(strings.Fields(value), "")
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func hasLetter(value string) bool {
	return strings.IndexFunc(value, unicode.IsLetter) >= 0
}

func hasDigit(value string) bool {
	return strings.IndexFunc(value, unicode.IsDigit) >= 0
}

func isAlphanumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isNegative(value string) bool {
	return strings.HasPrefix(value, "-") && hasDigit(value)
}

// isDecimal reports a number with a fractional part, including "5.0".
func isDecimal(value string) bool {
	if !strings.Contains(value, ".") {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func nameRules(label string) []rule {
	return []rule{
		{
			check:   notBlank,
			message: label + " is required and cannot be left blank.",
		},
		{
			check:   func(v string) bool { return utf8.RuneCountInString(withoutSpaces(v)) <= maxNameLength },
			message: label + " cannot be longer than 50 characters.",
		},
		{
			check:   func(v string) bool { return !isDigits(withoutSpaces(v)) },
			message: label + " cannot only contain numbers. Please include at least one letter.",
		},
		{
			check:   func(v string) bool { return isAlphanumeric(withoutSpaces(v)) && hasLetter(v) },
			message: label + " can only include letters or letters with numbers. No symbols or other characters.",
		},
	}
}

func quantityRules(label string, parsed *int) []rule {
	return []rule{
		{
			check:   notBlank,
			message: label + " is required and cannot be left blank.",
		},
		{
			check:   func(v string) bool { return !hasLetter(v) },
			message: label + " must only include numbers, no letters.",
		},
		{
			check:   func(v string) bool { return !isNegative(v) },
			message: label + " must be a positive number between 1 and 500.",
		},
		{
			check:   func(v string) bool { return !isDecimal(v) },
			message: label + " cannot be a decimal. It must be a whole number between 1 and 500.",
		},
		{
			check:   isDigits,
			message: label + " must only include numbers. Symbols and other characters are not allowed.",
		},
		{
			check: func(v string) bool {
				n, err := strconv.Atoi(v)
				if err != nil || n < minQuantity || n > maxQuantity {
					return false
				}
				*parsed = n
				return true
			},
			message: label + " must be between 1 and 500.",
		},
	}
}

func receiptNumberRules(label string, parsed *int) []rule {
	return []rule{
		{
			check:   notBlank,
			message: label + " is required and cannot be left blank.",
		},
		{
			check:   func(v string) bool { return !hasLetter(v) },
			message: label + " must only include numbers. Letters are not allowed.",
		},
		{
			check:   func(v string) bool { return !isNegative(v) },
			message: label + " can only be a positive number.",
		},
		{
			check:   func(v string) bool { return !isDecimal(v) },
			message: label + " cannot be a decimal and must be an existing receipt number.",
		},
		{
			check:   isDigits,
			message: label + " must only include numbers. Symbols and other characters are not allowed.",
		},
		{
			check: func(v string) bool {
				if len(v) != receiptDigits {
					return false
				}
				n, err := strconv.Atoi(v)
				if err != nil {
					return false
				}
				*parsed = n
				return true
			},
			message: label + " must be exactly 4 digits long.",
		},
	}
}
