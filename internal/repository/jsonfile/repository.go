package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/partyhire/internal/domain/models"
)

var (
	// ErrNotExist is returned by ReadAll when the data file is absent.
	ErrNotExist = errors.New("data file does not exist")

	// ErrMalformed is returned when the data file cannot be decoded into records.
	ErrMalformed = errors.New("data file is malformed")
)

const (
	filePerm   = 0o644
	jsonIndent = "    "
	rowFields  = 5
)

// Repository defines the persistence operations the record store relies on.
type Repository interface {
	ReadAll(ctx context.Context) ([]models.Record, error)
	WriteAll(ctx context.Context, records []models.Record) error
}

// FileRepository keeps the record list in a single JSON file. Every write
// replaces the whole file.
type FileRepository struct {
	path   string
	logger *zap.Logger
}

// NewFileRepository builds a repository for the file at path.
func NewFileRepository(path string, logger *zap.Logger) (*FileRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("data file path must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileRepository{path: path, logger: logger}, nil
}

// Path returns the location of the data file.
func (r *FileRepository) Path() string {
	return r.path
}

// ReadAll decodes every row of the data file in order.
func (r *FileRepository) ReadAll(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, r.path)
		}
		return nil, fmt.Errorf("read data file %s: %w", r.path, err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, r.path, err)
	}

	r.logger.Debug("data file read", zap.String("path", r.path), zap.Int("records", len(records)))
	return records, nil
}

// WriteAll replaces the data file with records.
func (r *FileRepository) WriteAll(ctx context.Context, records []models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if err := os.WriteFile(r.path, data, filePerm); err != nil {
		return fmt.Errorf("write data file %s: %w", r.path, err)
	}

	r.logger.Debug("data file written", zap.String("path", r.path), zap.Int("records", len(records)))
	return nil
}

// encodeRecords renders records as an array of
// [receipt_number, first_name, last_name, item, quantity] rows.
func encodeRecords(records []models.Record) ([]byte, error) {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{rec.ReceiptNumber, rec.FirstName, rec.LastName, string(rec.Item), rec.Quantity})
	}
	return json.MarshalIndent(rows, "", jsonIndent)
}

func decodeRecords(data []byte) ([]models.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("top level value is not a list")
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows))
	for i, raw := range rows {
		rec, err := decodeRow(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(raw json.RawMessage) (models.Record, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Record{}, errors.New("row is not a list")
	}

	switch len(fields) {
	case rowFields:
	case 3:
		return models.Record{}, errors.New("three-field row without receipt number or split name")
	default:
		return models.Record{}, fmt.Errorf("expected %d fields, got %d", rowFields, len(fields))
	}

	var (
		rec models.Record
		err error
	)
	if rec.ReceiptNumber, err = decodeInt(fields[0]); err != nil {
		return models.Record{}, fmt.Errorf("receipt number: %w", err)
	}
	if rec.FirstName, err = decodeString(fields[1]); err != nil {
		return models.Record{}, fmt.Errorf("first name: %w", err)
	}
	if rec.LastName, err = decodeString(fields[2]); err != nil {
		return models.Record{}, fmt.Errorf("last name: %w", err)
	}
	item, err := decodeString(fields[3])
	if err != nil {
		return models.Record{}, fmt.Errorf("item: %w", err)
	}
	rec.Item = models.Item(item)
	if rec.Quantity, err = decodeInt(fields[4]); err != nil {
		return models.Record{}, fmt.Errorf("quantity: %w", err)
	}
	return rec, nil
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected a string, got %s", raw)
	}
	return s, nil
}

// decodeInt accepts 12 as well as "12"; older files stored quantities as text.
func decodeInt(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("expected an integer, got %s", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", s)
	}
	return n, nil
}
