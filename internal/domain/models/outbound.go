package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawValue holds a form value exactly as the user typed it. It decodes from
// a JSON string or a JSON number so that "5", 5 and 5.5 all reach the
// validator as text.
type RawValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*v = RawValue(n.String())
	return nil
}

// SubmitReceiptRequest is the body of POST /receipts.
type SubmitReceiptRequest struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Item        string   `json:"item"`
	Quantity    RawValue `json:"quantity"`
	OnDuplicate string   `json:"on_duplicate,omitempty"`
}

// Input converts the request into raw validator input.
func (r SubmitReceiptRequest) Input() SubmissionInput {
	return SubmissionInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Item:      r.Item,
		Quantity:  string(r.Quantity),
	}
}

// ReceiptResponse describes a record that was created, updated or deleted.
type ReceiptResponse struct {
	Message   string  `json:"message"`
	Record    *Record `json:"record,omitempty"`
	Updated   bool    `json:"updated,omitempty"`
	NextEntry int     `json:"next_entry"`
}

// ReceiptListResponse is the body of GET /receipts.
type ReceiptListResponse struct {
	Message   string   `json:"message,omitempty"`
	Records   []Record `json:"records"`
	NextEntry int      `json:"next_entry"`
}

// ErrorResponse is returned for every failed request. Only the fields that
// apply to the failure are populated.
type ErrorResponse struct {
	Error     string   `json:"error,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Message   string   `json:"message,omitempty"`
	Duplicate *Record  `json:"duplicate,omitempty"`
}
