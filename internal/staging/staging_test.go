package staging

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

func TestRaw_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "raw_data.parquet")
	series := []model.RawSeries{
		{Symbol: "AAPL", Bars: map[string]model.RawBar{
			"2024-01-02": {Open: "187.15", High: "188.44", Low: "183.885", Close: "185.64", Volume: "82488674"},
			"2024-01-03": {Open: "184.22", High: "", Low: "183.43", Close: "184.25", Volume: "58414460"},
		}},
		{Symbol: "MSFT", Bars: map[string]model.RawBar{
			"2024-01-02": {Open: "373.86", High: "375.9", Low: "366.77", Close: "370.87", Volume: "25258600"},
		}},
	}

	n, err := WriteRaw(path, series)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	got, err := ReadRaw(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	bySymbol := make(map[string]model.RawSeries)
	for _, s := range got {
		bySymbol[s.Symbol] = s
	}
	for _, want := range series {
		if diff := cmp.Diff(want, bySymbol[want.Symbol]); diff != "" {
			t.Errorf("series %s mismatch (-want +got):\n%s", want.Symbol, diff)
		}
	}
}

func TestBatch_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "clean_data.parquet")
	batch := model.Batch{
		{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Symbol: "AAPL", Open: 187.15, High: 188.44, Low: 183.885, Close: 185.64, Volume: 82488674},
		{Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Symbol: "AAPL", Open: 184.22, High: 185.88, Low: 183.43, Close: 184.25, Volume: 58414460},
	}

	require.NoError(t, WriteBatch(path, batch))

	got, err := ReadBatch(path)
	require.NoError(t, err)
	if diff := cmp.Diff(batch, got); diff != "" {
		t.Errorf("ReadBatch() mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.parquet")
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, WriteBatch(path, model.Batch{{Timestamp: day, Symbol: "A", Open: 1, High: 1, Low: 1, Close: 1}}))
	require.NoError(t, WriteBatch(path, model.Batch{{Timestamp: day, Symbol: "B", Open: 2, High: 2, Low: 2, Close: 2}}))

	got, err := ReadBatch(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "B", got[0].Symbol)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files left behind")
}

func TestRead_MissingFile(t *testing.T) {
	_, err := ReadBatch(filepath.Join(t.TempDir(), "nope.parquet"))
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist), "err = %v", err)
}
