package store

//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock

import (
	"context"
	"errors"
	"time"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

var (
	// ErrUnavailable is returned when the store cannot be opened, reached or locked.
	ErrUnavailable = errors.New("store unavailable")

	// ErrSchemaMismatch is returned when an existing table has an incompatible column set.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Opener acquires a store session.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one exclusive handle on the OHLCV table.
type Session interface {
	// EnsureSchema creates the table if absent and verifies its columns.
	EnsureSchema(ctx context.Context) error

	// BulkMerge stages batch and inserts it with one conflict-tolerant statement.
	// It returns the number of rows newly stored. On error nothing is stored.
	BulkMerge(ctx context.Context, batch model.Batch) (int64, error)

	// InsertRow inserts one record, reporting whether it was newly stored.
	InsertRow(ctx context.Context, rec model.Record) (bool, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Coverage summarizes stored records per symbol.
	Coverage(ctx context.Context) ([]Coverage, error)

	Close() error
}

// Coverage is the stored range of one symbol.
type Coverage struct {
	Symbol string
	Rows   int64
	First  time.Time
	Last   time.Time
}
