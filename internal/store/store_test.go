package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/partyhire/internal/domain/models"
	"github.com/mamadbah2/partyhire/internal/receipt"
	"github.com/mamadbah2/partyhire/internal/repository/jsonfile"
	"github.com/mamadbah2/partyhire/internal/store"
)

var errDiskFull = errors.New("disk full")

// memoryRepository keeps rows in memory and can be told to fail writes.
type memoryRepository struct {
	records   []models.Record
	missing   bool
	failWrite bool
	writes    int
}

func (m *memoryRepository) ReadAll(context.Context) ([]models.Record, error) {
	if m.missing {
		return nil, jsonfile.ErrNotExist
	}
	return append([]models.Record(nil), m.records...), nil
}

func (m *memoryRepository) WriteAll(_ context.Context, records []models.Record) error {
	if m.failWrite {
		return errDiskFull
	}
	m.writes++
	m.missing = false
	m.records = append([]models.Record(nil), records...)
	return nil
}

func submission(first, last string, item models.Item, qty int) models.Submission {
	return models.Submission{FirstName: first, LastName: last, Item: item, Quantity: qty}
}

func newFileStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customer_receipts.json")
	repo, err := jsonfile.NewFileRepository(path, nil)
	require.NoError(t, err)

	st := store.New(repo, nil, nil)
	require.NoError(t, st.Load(context.Background()))
	return st, path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a missing file with an empty list", func(t *testing.T) {
		st, path := newFileStore(t)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))

		records, err := st.List()
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, 1, st.NextEntryNumber())
	})

	t.Run("malformed file is reported and kept until reset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "customer_receipts.json")
		require.NoError(t, os.WriteFile(path, []byte(`[[1234, "Ann"`), 0o644))
		repo, err := jsonfile.NewFileRepository(path, nil)
		require.NoError(t, err)

		st := store.New(repo, nil, nil)
		err = st.Load(ctx)
		require.ErrorIs(t, err, store.ErrMalformedFile)
		assert.False(t, st.Loaded())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `[[1234, "Ann"`, string(data))

		_, err = st.List()
		assert.ErrorIs(t, err, store.ErrNotLoaded)
		_, err = st.Insert(ctx, submission("Ann", "Lee", models.ItemForks, 1), models.DuplicateAsk)
		assert.ErrorIs(t, err, store.ErrNotLoaded)
		_, err = st.Delete(ctx, 1234)
		assert.ErrorIs(t, err, store.ErrNotLoaded)

		require.NoError(t, st.Reset(ctx))
		assert.True(t, st.Loaded())
		data, err = os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("rejects duplicate receipt numbers", func(t *testing.T) {
		repo := &memoryRepository{records: []models.Record{
			{ReceiptNumber: 1234, FirstName: "Ann", LastName: "Lee", Item: models.ItemForks, Quantity: 1},
			{ReceiptNumber: 1234, FirstName: "Bob", LastName: "Ray", Item: models.ItemKnives, Quantity: 2},
		}}
		err := store.New(repo, nil, nil).Load(ctx)
		assert.ErrorIs(t, err, store.ErrMalformedFile)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("rejects out of range values", func(t *testing.T) {
		repo := &memoryRepository{records: []models.Record{
			{ReceiptNumber: 1234, FirstName: "Ann", LastName: "Lee", Item: models.ItemForks, Quantity: 900},
		}}
		err := store.New(repo, nil, nil).Load(ctx)
		assert.ErrorIs(t, err, store.ErrMalformedFile)
	})

	t.Run("other read errors are not malformed", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := jsonfile.NewFileRepository(dir, nil)
		require.NoError(t, err)

		st := store.New(repo, nil, nil)
		err = st.Load(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrMalformedFile)
		assert.False(t, st.Malformed())
		assert.ErrorIs(t, st.Reset(ctx), store.ErrResetRefused)
	})

	t.Run("accepts long names whose letters fit the limit", func(t *testing.T) {
		long := strings.TrimSpace(strings.Repeat("Abcde ", 9))
		path := filepath.Join(t.TempDir(), "customer_receipts.json")
		content := `[[1234, "` + long + `", "Lee", "Forks", "3"], [5678, "Ann", "Lee", "Knives", 2]]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		repo, err := jsonfile.NewFileRepository(path, nil)
		require.NoError(t, err)

		st := store.New(repo, nil, nil)
		require.NoError(t, st.Load(ctx))

		records, err := st.List()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, long, records[0].FirstName)
		assert.Equal(t, 3, records[0].Quantity)
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses to wipe a healthy file", func(t *testing.T) {
		st, path := newFileStore(t)
		_, err := st.Insert(ctx, submission("Ann", "Lee", models.ItemForks, 3), models.DuplicateAsk)
		require.NoError(t, err)
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.ErrorIs(t, st.Reset(ctx), store.ErrResetRefused)

		records, err := st.List()
		require.NoError(t, err)
		assert.Len(t, records, 1)
		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("clears the malformed flag", func(t *testing.T) {
		repo := &memoryRepository{records: []models.Record{
			{ReceiptNumber: 1234, FirstName: "Ann", LastName: "Lee", Item: models.ItemForks, Quantity: 900},
		}}
		st := store.New(repo, nil, nil)
		require.ErrorIs(t, st.Load(ctx), store.ErrMalformedFile)
		assert.True(t, st.Malformed())

		require.NoError(t, st.Reset(ctx))
		assert.False(t, st.Malformed())
		assert.Empty(t, repo.records)
		assert.ErrorIs(t, st.Reset(ctx), store.ErrResetRefused)
	})
}

func TestInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("appends with a fresh receipt number", func(t *testing.T) {
		st, _ := newFileStore(t)

		res, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateAsk)
		require.NoError(t, err)
		assert.False(t, res.Updated)
		assert.GreaterOrEqual(t, res.Record.ReceiptNumber, 1000)
		assert.LessOrEqual(t, res.Record.ReceiptNumber, 9999)

		records, err := st.List()
		require.NoError(t, err)
		assert.Equal(t, []models.Record{res.Record}, records)
		assert.Equal(t, 2, st.NextEntryNumber())
	})

	t.Run("asks before touching a duplicate", func(t *testing.T) {
		st, _ := newFileStore(t)
		first, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateAsk)
		require.NoError(t, err)

		_, err = st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 50), models.DuplicateAsk)
		var dup *store.DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, first.Record, dup.Existing)
		assert.Equal(t, 1, st.Len())
	})

	t.Run("update replaces the quantity of the newest match", func(t *testing.T) {
		st, _ := newFileStore(t)
		_, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateAsk)
		require.NoError(t, err)
		second, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 30), models.DuplicateInsert)
		require.NoError(t, err)

		res, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 99), models.DuplicateUpdate)
		require.NoError(t, err)
		assert.True(t, res.Updated)
		assert.Equal(t, second.Record.ReceiptNumber, res.Record.ReceiptNumber)
		assert.Equal(t, 99, res.Record.Quantity)

		records, err := st.List()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 20, records[0].Quantity)
		assert.Equal(t, 99, records[1].Quantity)
	})

	t.Run("update without a match inserts", func(t *testing.T) {
		st, _ := newFileStore(t)
		res, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateUpdate)
		require.NoError(t, err)
		assert.False(t, res.Updated)
		assert.Equal(t, 1, st.Len())
	})

	t.Run("different item is not a duplicate", func(t *testing.T) {
		st, _ := newFileStore(t)
		_, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateAsk)
		require.NoError(t, err)
		_, err = st.Insert(ctx, submission("John", "Smith", models.ItemForks, 20), models.DuplicateAsk)
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())
	})

	t.Run("unknown policy", func(t *testing.T) {
		st, _ := newFileStore(t)
		_, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), "merge")
		assert.ErrorIs(t, err, models.ErrUnknownDuplicatePolicy)
	})

	t.Run("failed write leaves memory untouched", func(t *testing.T) {
		repo := &memoryRepository{}
		st := store.New(repo, nil, nil)
		require.NoError(t, st.Load(ctx))
		first, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateAsk)
		require.NoError(t, err)

		repo.failWrite = true
		_, err = st.Insert(ctx, submission("Ann", "Lee", models.ItemForks, 5), models.DuplicateAsk)
		require.ErrorIs(t, err, errDiskFull)
		_, err = st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 99), models.DuplicateUpdate)
		require.ErrorIs(t, err, errDiskFull)
		_, err = st.Delete(ctx, first.Record.ReceiptNumber)
		require.ErrorIs(t, err, errDiskFull)

		records, err := st.List()
		require.NoError(t, err)
		assert.Equal(t, []models.Record{first.Record}, records)
	})
}

func TestInsertExhausted(t *testing.T) {
	ctx := context.Background()

	records := make([]models.Record, 0, receipt.Capacity)
	for n := models.MinReceiptNumber; n <= models.MaxReceiptNumber; n++ {
		records = append(records, models.Record{ReceiptNumber: n, FirstName: "Ann", LastName: "Lee", Item: models.ItemForks, Quantity: 1})
	}
	repo := &memoryRepository{records: records}
	st := store.New(repo, nil, nil)
	require.NoError(t, st.Load(ctx))

	_, err := st.Insert(ctx, submission("Bob", "Ray", models.ItemKnives, 2), models.DuplicateAsk)
	require.ErrorIs(t, err, receipt.ErrExhausted)
	assert.Equal(t, receipt.Capacity, st.Len())
	assert.Zero(t, repo.writes)

	res, err := st.Insert(ctx, submission("Ann", "Lee", models.ItemForks, 7), models.DuplicateUpdate)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, models.MaxReceiptNumber, res.Record.ReceiptNumber)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	st, _ := newFileStore(t)

	a, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateAsk)
	require.NoError(t, err)
	b, err := st.Insert(ctx, submission("Ann", "Lee", models.ItemForks, 5), models.DuplicateAsk)
	require.NoError(t, err)

	removed, err := st.Delete(ctx, a.Record.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, a.Record, removed)

	records, err := st.List()
	require.NoError(t, err)
	assert.Equal(t, []models.Record{b.Record}, records)

	_, err = st.Delete(ctx, a.Record.ReceiptNumber)
	assert.ErrorIs(t, err, store.ErrReceiptNotFound)
	assert.Equal(t, 1, st.Len())

	_, ok := st.Find(b.Record.ReceiptNumber)
	assert.True(t, ok)
	_, ok = st.Find(a.Record.ReceiptNumber)
	assert.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st, _ := newFileStore(t)
	_, err := st.Insert(ctx, submission("John", "Smith", models.ItemBalloons, 20), models.DuplicateAsk)
	require.NoError(t, err)

	records, err := st.List()
	require.NoError(t, err)
	records[0].Quantity = 1

	again, err := st.List()
	require.NoError(t, err)
	assert.Equal(t, 20, again[0].Quantity)
}

func TestDuplicateErrorMessage(t *testing.T) {
	err := &store.DuplicateError{Existing: models.Record{ReceiptNumber: 4821, FirstName: "John", LastName: "Smith", Item: models.ItemBalloons, Quantity: 3}}
	assert.Equal(t, "receipt 4821 already exists for John Smith hiring Balloons", err.Error())
}
