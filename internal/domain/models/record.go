package models

import "strings"

// Bounds shared by the validator, the receipt generator and the store.
const (
	MinReceiptNumber = 1000
	MaxReceiptNumber = 9999
	MinQuantity      = 1
	MaxQuantity      = 500
	MaxNameLength    = 50
)

// Item is one entry of the hire catalog.
type Item string

const (
	ItemKnives      Item = "Knives"
	ItemForks       Item = "Forks"
	ItemSpoons      Item = "Spoons"
	ItemPaperPlates Item = "Paper Plates"
	ItemPaperBowls  Item = "Paper Bowls"
	ItemPaperCups   Item = "Paper Cups"
	ItemBalloons    Item = "Balloons"
	ItemPartyHats   Item = "Party Hats"
)

// Catalog returns the rentable items in display order.
func Catalog() []Item {
	return []Item{
		ItemKnives,
		ItemForks,
		ItemSpoons,
		ItemPaperPlates,
		ItemPaperBowls,
		ItemPaperCups,
		ItemBalloons,
		ItemPartyHats,
	}
}

// ParseItem resolves a catalog entry, ignoring case and surrounding whitespace.
func ParseItem(value string) (Item, bool) {
	value = strings.TrimSpace(value)
	for _, item := range Catalog() {
		if strings.EqualFold(string(item), value) {
			return item, true
		}
	}
	return "", false
}

// Record is one rental transaction held by the store.
type Record struct {
	ReceiptNumber int    `json:"receipt_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Item          Item   `json:"item"`
	Quantity      int    `json:"quantity"`
}

// FullName joins the customer's first and last names.
func (r Record) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Matches reports whether the record belongs to the same customer and item
// as the submission.
func (r Record) Matches(s Submission) bool {
	return r.FirstName == s.FirstName && r.LastName == s.LastName && r.Item == s.Item
}

// Submission is a validated, normalised request to hire an item.
type Submission struct {
	FirstName string
	LastName  string
	Item      Item
	Quantity  int
}

// SubmissionInput carries the raw form values as typed by the user.
type SubmissionInput struct {
	FirstName string
	LastName  string
	Item      string
	Quantity  string
}
