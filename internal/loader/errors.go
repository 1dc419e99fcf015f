package loader

import (
	"errors"
	"fmt"

	"github.com/ohlcv-etl/ohlcv/internal/model"
	"github.com/ohlcv-etl/ohlcv/internal/store"
)

var (
	// ErrStoreUnavailable is returned when the store cannot be opened or locked.
	ErrStoreUnavailable = store.ErrUnavailable

	// ErrSchemaMismatch is returned when the existing table has incompatible columns.
	ErrSchemaMismatch = store.ErrSchemaMismatch

	// ErrRowRejected marks a single record refused in row mode.
	ErrRowRejected = errors.New("row rejected")

	// ErrBatchRejected is returned when a bulk merge stores nothing.
	ErrBatchRejected = errors.New("batch rejected")
)

// RowError describes one record rejected in row mode.
type RowError struct {
	Index int
	Key   model.Key
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: record %d (%s): %v", ErrRowRejected, e.Index, e.Key, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func (e *RowError) Is(target error) bool { return target == ErrRowRejected }

// failureReason labels an engine error for metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrBatchRejected):
		return "batch_rejected"
	default:
		return "other"
	}
}
