package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(symbol string, ts time.Time, close float64) model.Record {
	return model.Record{Timestamp: ts, Symbol: symbol, Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 1000}
}

func openDuck(t *testing.T, path string) Session {
	t.Helper()
	s, err := NewDuckDB(path, "ohlcv_data", nil).Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestDuckDB_EnsureSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openDuck(t, filepath.Join(t.TempDir(), "market.duckdb"))
	defer s.Close()

	_, err := s.BulkMerge(ctx, model.Batch{rec("AAPL", day(2024, 1, 2), 185)})
	require.NoError(t, err)

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestDuckDB_BulkMerge(t *testing.T) {
	ctx := context.Background()
	s := openDuck(t, filepath.Join(t.TempDir(), "market.duckdb"))
	defer s.Close()

	batch := model.Batch{
		rec("AAPL", day(2024, 1, 2), 185),
		rec("AAPL", day(2024, 1, 3), 184),
		rec("MSFT", day(2024, 1, 2), 370),
		rec("AAPL", day(2024, 1, 2), 999), // in-batch duplicate, first wins
	}

	inserted, err := s.BulkMerge(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, int64(3), inserted)

	inserted, err = s.BulkMerge(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, int64(0), inserted)

	cov, err := s.Coverage(ctx)
	require.NoError(t, err)
	require.Equal(t, []Coverage{
		{Symbol: "AAPL", Rows: 2, First: day(2024, 1, 2), Last: day(2024, 1, 3)},
		{Symbol: "MSFT", Rows: 1, First: day(2024, 1, 2), Last: day(2024, 1, 2)},
	}, cov)
}

func TestDuckDB_StoredValuesAreFirstWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "market.duckdb")

	s := openDuck(t, path)
	_, err := s.BulkMerge(ctx, model.Batch{rec("AAPL", day(2024, 1, 2), 185)})
	require.NoError(t, err)
	ok, err := s.InsertRow(ctx, rec("AAPL", day(2024, 1, 2), 500))
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, s.Close())

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer db.Close()

	var close float64
	var volume int64
	require.NoError(t, db.QueryRow(`SELECT close, volume FROM ohlcv_data WHERE symbol = 'AAPL'`).Scan(&close, &volume))
	require.Equal(t, 185.0, close)
	require.Equal(t, int64(1000), volume)
}

func TestDuckDB_InsertRow(t *testing.T) {
	ctx := context.Background()
	s := openDuck(t, filepath.Join(t.TempDir(), "market.duckdb"))
	defer s.Close()

	ok, err := s.InsertRow(ctx, rec("TSLA", day(2024, 2, 1), 190))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.InsertRow(ctx, rec("TSLA", day(2024, 2, 1), 190))
	require.NoError(t, err)
	require.False(t, ok)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestDuckDB_EmptyBulkMerge(t *testing.T) {
	s := openDuck(t, filepath.Join(t.TempDir(), "market.duckdb"))
	defer s.Close()

	inserted, err := s.BulkMerge(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, inserted)
}

func TestDuckDB_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{
			name:  "wrong columns",
			table: `CREATE TABLE ohlcv_data (ts TIMESTAMP, symbol VARCHAR, price DOUBLE)`,
		},
		{
			name: "no unique key",
			table: `CREATE TABLE ohlcv_data ("timestamp" TIMESTAMP, symbol VARCHAR, open DOUBLE,
				high DOUBLE, low DOUBLE, close DOUBLE, volume BIGINT)`,
		},
		{
			name: "unique on symbol only",
			table: `CREATE TABLE ohlcv_data ("timestamp" TIMESTAMP, symbol VARCHAR UNIQUE, open DOUBLE,
				high DOUBLE, low DOUBLE, close DOUBLE, volume BIGINT)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "market.duckdb")

			db, err := sql.Open("duckdb", path)
			require.NoError(t, err)
			_, err = db.Exec(tt.table)
			require.NoError(t, err)
			require.NoError(t, db.Close())

			s, err := NewDuckDB(path, "ohlcv_data", nil).Open(context.Background())
			require.NoError(t, err)
			defer s.Close()

			err = s.EnsureSchema(context.Background())
			require.True(t, errors.Is(err, ErrSchemaMismatch), "err = %v", err)
		})
	}
}

func TestDuckDB_PrimaryKeySatisfiesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.duckdb")

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE ohlcv_data ("timestamp" TIMESTAMP, symbol VARCHAR, open DOUBLE,
		high DOUBLE, low DOUBLE, close DOUBLE, volume BIGINT, PRIMARY KEY (symbol, "timestamp"))`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := openDuck(t, path)
	defer s.Close()

	inserted, err := s.BulkMerge(context.Background(), model.Batch{rec("AAPL", day(2024, 1, 2), 185)})
	require.NoError(t, err)
	require.Equal(t, int64(1), inserted)
}

func TestDuckDB_BulkMergeLeavesNoStagingTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "market.duckdb")
	s := openDuck(t, path)

	_, err := s.BulkMerge(ctx, model.Batch{rec("AAPL", day(2024, 1, 2), 185), rec("MSFT", day(2024, 1, 2), 370)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM duckdb_tables() WHERE table_name LIKE 'ohlcv_stage_%'`).Scan(&n))
	require.Zero(t, n)
}

func TestDuckDB_Unavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "market.duckdb")

	_, err := NewDuckDB(path, "ohlcv_data", nil).Open(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnavailable), "err = %v", err)
}
