// Package store owns the in-memory list of rental records and mirrors it
// to the data file after every change.
//
// A Store is not safe for concurrent use; callers serialise access.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mamadbah2/partyhire/internal/domain/models"
	"github.com/mamadbah2/partyhire/internal/receipt"
	"github.com/mamadbah2/partyhire/internal/repository/jsonfile"
	"github.com/mamadbah2/partyhire/internal/validation"
)

var (
	// ErrNotLoaded is returned by operations on a store whose data file has
	// not been loaded successfully.
	ErrNotLoaded = errors.New("record store is not loaded")

	// ErrReceiptNotFound is returned when no record carries the receipt number.
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrMalformedFile marks a data file that exists but cannot be trusted.
	// Reset replaces it with an empty list.
	ErrMalformedFile = jsonfile.ErrMalformed

	// ErrResetRefused is returned by Reset unless the last Load found the
	// data file malformed.
	ErrResetRefused = errors.New("reset is only allowed for a malformed data file")
)

// DuplicateError is returned by Insert under models.DuplicateAsk when the
// customer already hires the same item.
type DuplicateError struct {
	Existing models.Record
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("receipt %d already exists for %s hiring %s", e.Existing.ReceiptNumber, e.Existing.FullName(), e.Existing.Item)
}

// InsertResult describes what Insert did.
type InsertResult struct {
	Record  models.Record
	Updated bool
}

// Store is the ordered record list backed by a repository.
type Store struct {
	repo      jsonfile.Repository
	generator *receipt.Generator
	logger    *zap.Logger

	records   []models.Record
	loaded    bool
	malformed bool
}

// New builds an empty, unloaded store. Call Load before anything else.
func New(repo jsonfile.Repository, generator *receipt.Generator, logger *zap.Logger) *Store {
	if generator == nil {
		generator = receipt.NewGenerator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:      repo,
		generator: generator,
		logger:    logger,
	}
}

// Load reads the data file. A missing file is created holding an empty list.
// A malformed file yields ErrMalformedFile and leaves the store unloaded.
func (s *Store) Load(ctx context.Context) error {
	records, err := s.repo.ReadAll(ctx)
	switch {
	case errors.Is(err, jsonfile.ErrNotExist):
		s.logger.Info("data file missing, creating an empty one")
		return s.reset(ctx)
	case errors.Is(err, jsonfile.ErrMalformed):
		s.loaded = false
		s.malformed = true
		return fmt.Errorf("load records: %w", err)
	case err != nil:
		s.loaded = false
		return fmt.Errorf("load records: %w", err)
	}

	if err := checkIntegrity(records); err != nil {
		s.loaded = false
		s.malformed = true
		return fmt.Errorf("load records: %w: %v", ErrMalformedFile, err)
	}

	s.records = records
	s.loaded = true
	s.malformed = false
	s.logger.Info("records loaded", zap.Int("count", len(records)))
	return nil
}

// Reset replaces a malformed data file with an empty list and marks the
// store loaded. It returns ErrResetRefused unless the last Load found the
// file malformed.
func (s *Store) Reset(ctx context.Context) error {
	if !s.malformed {
		return ErrResetRefused
	}
	return s.reset(ctx)
}

// Malformed reports whether the last Load rejected the data file.
func (s *Store) Malformed() bool {
	return s.malformed
}

func (s *Store) reset(ctx context.Context) error {
	if err := s.repo.WriteAll(ctx, nil); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	s.records = nil
	s.loaded = true
	s.malformed = false
	s.logger.Info("data file reset to an empty list")
	return nil
}

// Loaded reports whether the store holds a trusted copy of the data file.
func (s *Store) Loaded() bool {
	return s.loaded
}

// List returns the records in insertion order.
func (s *Store) List() ([]models.Record, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return slices.Clone(s.records), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.records)
}

// NextEntryNumber is the 1-based position the next new record will take.
func (s *Store) NextEntryNumber() int {
	return len(s.records) + 1
}

// Find returns the first record with the receipt number.
func (s *Store) Find(number int) (models.Record, bool) {
	if i := s.indexOf(number); i >= 0 {
		return s.records[i], true
	}
	return models.Record{}, false
}

// Insert stores a validated submission. When the newest record for the same
// customer and item exists, policy decides between asking, updating its
// quantity, or appending anyway.
func (s *Store) Insert(ctx context.Context, sub models.Submission, policy models.DuplicatePolicy) (InsertResult, error) {
	if !s.loaded {
		return InsertResult{}, ErrNotLoaded
	}

	switch policy {
	case models.DuplicateAsk, models.DuplicateUpdate:
		if i := s.lastMatch(sub); i >= 0 {
			if policy == models.DuplicateAsk {
				return InsertResult{}, &DuplicateError{Existing: s.records[i]}
			}
			return s.updateQuantity(ctx, i, sub.Quantity)
		}
	case models.DuplicateInsert:
	default:
		return InsertResult{}, fmt.Errorf("%w: %q", models.ErrUnknownDuplicatePolicy, policy)
	}

	number, err := s.generator.Next(s.receiptNumbers())
	if err != nil {
		return InsertResult{}, err
	}

	rec := models.Record{
		ReceiptNumber: number,
		FirstName:     sub.FirstName,
		LastName:      sub.LastName,
		Item:          sub.Item,
		Quantity:      sub.Quantity,
	}

	next := append(slices.Clip(s.records), rec)
	if err := s.commit(ctx, next); err != nil {
		return InsertResult{}, err
	}

	s.logger.Info("record inserted", zap.Int("receipt", rec.ReceiptNumber), zap.String("item", string(rec.Item)), zap.Int("quantity", rec.Quantity))
	return InsertResult{Record: rec}, nil
}

// Delete removes the first record with the receipt number.
func (s *Store) Delete(ctx context.Context, number int) (models.Record, error) {
	if !s.loaded {
		return models.Record{}, ErrNotLoaded
	}

	i := s.indexOf(number)
	if i < 0 {
		return models.Record{}, fmt.Errorf("%w: %d", ErrReceiptNotFound, number)
	}

	removed := s.records[i]
	next := slices.Delete(slices.Clone(s.records), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return models.Record{}, err
	}

	s.logger.Info("record deleted", zap.Int("receipt", number))
	return removed, nil
}

func (s *Store) updateQuantity(ctx context.Context, i, quantity int) (InsertResult, error) {
	next := slices.Clone(s.records)
	previous := next[i].Quantity
	next[i].Quantity = quantity
	if err := s.commit(ctx, next); err != nil {
		return InsertResult{}, err
	}

	s.logger.Info("record quantity updated", zap.Int("receipt", next[i].ReceiptNumber), zap.Int("from", previous), zap.Int("to", quantity))
	return InsertResult{Record: next[i], Updated: true}, nil
}

// commit writes next to disk and only then makes it the in-memory state,
// so a failed write leaves memory matching the file.
func (s *Store) commit(ctx context.Context, next []models.Record) error {
	if err := s.repo.WriteAll(ctx, next); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	s.records = next
	return nil
}

func (s *Store) indexOf(number int) int {
	return slices.IndexFunc(s.records, func(r models.Record) bool {
		return r.ReceiptNumber == number
	})
}

// lastMatch searches newest first so the latest receipt is the one updated.
func (s *Store) lastMatch(sub models.Submission) int {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Matches(sub) {
			return i
		}
	}
	return -1
}

func (s *Store) receiptNumbers() map[int]struct{} {
	taken := make(map[int]struct{}, len(s.records))
	for _, r := range s.records {
		taken[r.ReceiptNumber] = struct{}{}
	}
	return taken
}

func checkIntegrity(records []models.Record) error {
	seen := make(map[int]int, len(records))
	for i, r := range records {
		if err := validation.ValidateRecord(r); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if first, dup := seen[r.ReceiptNumber]; dup {
			return fmt.Errorf("row %d: receipt number %d already used by row %d", i+1, r.ReceiptNumber, first)
		}
		seen[r.ReceiptNumber] = i + 1
	}
	return nil
}
