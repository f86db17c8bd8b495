package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/partyhire/internal/domain/models"
	"github.com/mamadbah2/partyhire/internal/store"
	"github.com/mamadbah2/partyhire/internal/validation"
)

// ErrInvalidArguments indicates the command payload could not be interpreted.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const emptyListMessage = "There are no customer receipts yet. Please submit a customer receipt."

// RecordStore is the subset of the record store the dispatcher drives.
type RecordStore interface {
	Load(ctx context.Context) error
	Reset(ctx context.Context) error
	Loaded() bool
	List() ([]models.Record, error)
	NextEntryNumber() int
	Insert(ctx context.Context, sub models.Submission, policy models.DuplicatePolicy) (store.InsertResult, error)
	Delete(ctx context.Context, number int) (models.Record, error)
}

// Dispatcher executes user commands against the record store.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command) (models.Result, error)
}

// Service implements the Dispatcher interface. Commands run one at a time.
type Service struct {
	mu     sync.Mutex
	store  RecordStore
	logger *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(recordStore RecordStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  recordStore,
		logger: logger,
	}
}

// HandleCommand validates the command input, applies it to the store and
// describes the outcome. Failures come back as errors: validation.Errors,
// *store.DuplicateError, store.ErrReceiptNotFound, receipt.ErrExhausted,
// store.ErrMalformedFile, store.ErrResetRefused or a wrapped I/O error.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command) (models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)))

	if !s.store.Loaded() {
		err := s.store.Load(ctx)
		resettable := cmd.Type == models.CommandReset && errors.Is(err, store.ErrMalformedFile)
		if err != nil && !resettable {
			s.logger.Warn("record store unavailable", zap.Error(err))
			return models.Result{}, err
		}
	}

	var (
		result models.Result
		err    error
	)
	switch cmd.Type {
	case models.CommandSubmit:
		result, err = s.submit(ctx, cmd)
	case models.CommandDelete:
		result, err = s.delete(ctx, cmd)
	case models.CommandList:
		result, err = s.list()
	case models.CommandReset:
		result, err = s.reset(ctx)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}

	if err != nil {
		s.logFailure(cmd, err)
		return models.Result{}, err
	}
	return result, nil
}

func (s *Service) submit(ctx context.Context, cmd models.Command) (models.Result, error) {
	policy, err := models.ParseDuplicatePolicy(string(cmd.OnDuplicate))
	if err != nil {
		return models.Result{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	sub, err := validation.ValidateSubmission(cmd.Submission)
	if err != nil {
		return models.Result{}, err
	}

	res, err := s.store.Insert(ctx, sub, policy)
	if err != nil {
		return models.Result{}, err
	}

	rec := res.Record
	message := fmt.Sprintf("Receipt %d saved for %s: %d x %s.", rec.ReceiptNumber, rec.FullName(), rec.Quantity, rec.Item)
	if res.Updated {
		message = fmt.Sprintf("Receipt %d updated for %s: %d x %s.", rec.ReceiptNumber, rec.FullName(), rec.Quantity, rec.Item)
	}

	return models.Result{
		Message:   message,
		Record:    &rec,
		Updated:   res.Updated,
		NextEntry: s.store.NextEntryNumber(),
	}, nil
}

func (s *Service) delete(ctx context.Context, cmd models.Command) (models.Result, error) {
	number, err := validation.ValidateReceiptNumber(cmd.ReceiptNumber)
	if err != nil {
		return models.Result{}, err
	}

	removed, err := s.store.Delete(ctx, number)
	if err != nil {
		return models.Result{}, err
	}

	return models.Result{
		Message:   fmt.Sprintf("Receipt %d deleted.", removed.ReceiptNumber),
		Record:    &removed,
		NextEntry: s.store.NextEntryNumber(),
	}, nil
}

func (s *Service) list() (models.Result, error) {
	records, err := s.store.List()
	if err != nil {
		return models.Result{}, err
	}

	if records == nil {
		records = []models.Record{}
	}

	result := models.Result{
		Records:   records,
		NextEntry: s.store.NextEntryNumber(),
	}
	if len(records) == 0 {
		result.Message = emptyListMessage
	}
	return result, nil
}

func (s *Service) reset(ctx context.Context) (models.Result, error) {
	if err := s.store.Reset(ctx); err != nil {
		return models.Result{}, err
	}
	return models.Result{
		Message:   "The data file has been replaced with an empty list.",
		Records:   []models.Record{},
		NextEntry: s.store.NextEntryNumber(),
	}, nil
}

func (s *Service) logFailure(cmd models.Command, err error) {
	var dup *store.DuplicateError
	switch {
	case validation.IsValidationError(err):
		s.logger.Info("command rejected by validation", zap.String("command", string(cmd.Type)), zap.Strings("errors", validation.Extract(err).Messages()))
	case errors.As(err, &dup):
		s.logger.Info("duplicate receipt needs confirmation", zap.Int("receipt", dup.Existing.ReceiptNumber))
	case errors.Is(err, store.ErrReceiptNotFound):
		s.logger.Info("receipt not found", zap.String("receipt", cmd.ReceiptNumber))
	case errors.Is(err, store.ErrResetRefused):
		s.logger.Warn("reset refused for a healthy data file")
	default:
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
	}
}
