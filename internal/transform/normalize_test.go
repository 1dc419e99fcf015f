package transform

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

var now = time.Date(2024, 3, 1, 15, 30, 0, 0, time.Local)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(o, h, l, c, v string) model.RawBar {
	return model.RawBar{Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestNormalize_SortsAndConverts(t *testing.T) {
	series := []model.RawSeries{
		{Symbol: "msft", Bars: map[string]model.RawBar{
			"2024-02-02": bar("400.1", "410", "399", "405.5", "2000"),
			"2024-02-01": bar("398", "402", "396", "401", "1500.9"),
		}},
		{Symbol: "AAPL", Bars: map[string]model.RawBar{
			"2024-02-01": bar("185", "186.5", "184", "186", "1000"),
		}},
	}

	batch, rep := Normalize(series, Options{Days: 180, Now: now})

	want := model.Batch{
		{Timestamp: day("2024-02-01"), Symbol: "AAPL", Open: 185, High: 186.5, Low: 184, Close: 186, Volume: 1000},
		{Timestamp: day("2024-02-01"), Symbol: "MSFT", Open: 398, High: 402, Low: 396, Close: 401, Volume: 1500},
		{Timestamp: day("2024-02-02"), Symbol: "MSFT", Open: 400.1, High: 410, Low: 399, Close: 405.5, Volume: 2000},
	}
	if diff := cmp.Diff(want, batch); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, Report{Raw: 3, InWindow: 3, Output: 3}, rep)
}

func TestNormalize_Window(t *testing.T) {
	series := []model.RawSeries{{Symbol: "AAPL", Bars: map[string]model.RawBar{
		"2024-02-25": bar("1", "1", "1", "1", "1"),
		"2024-02-20": bar("1", "1", "1", "1", "1"),
		"2024-02-19": bar("1", "1", "1", "1", "1"),
	}}}

	// Cutoff is 2024-02-20 15:30, so only the 25th survives.
	batch, rep := Normalize(series, Options{Days: 10, Now: now})

	require.Len(t, batch, 1)
	require.Equal(t, day("2024-02-25"), batch[0].Timestamp)
	require.Equal(t, 1, rep.InWindow)
}

func TestNormalize_FillsGaps(t *testing.T) {
	series := []model.RawSeries{{Symbol: "TSLA", Bars: map[string]model.RawBar{
		"2024-02-01": bar("", "12", "9", "11", "100"),
		"2024-02-02": bar("10", "n/a", "9", "11", "200"),
		"2024-02-05": bar("10.5", "13", "9.5", "12", ""),
	}}}

	batch, rep := Normalize(series, Options{Now: now})

	require.Len(t, batch, 3)
	require.Equal(t, 10.0, batch[0].Open, "back-filled open")
	require.Equal(t, 12.0, batch[1].High, "forward-filled high")
	require.Equal(t, int64(200), batch[2].Volume, "forward-filled volume")
	require.Equal(t, 3, rep.Filled)
}

func TestNormalize_Drops(t *testing.T) {
	tests := []struct {
		name    string
		series  model.RawSeries
		want    int
		checkFn func(t *testing.T, rep Report)
	}{
		{
			name: "unparseable date label",
			series: model.RawSeries{Symbol: "A", Bars: map[string]model.RawBar{
				"02/01/2024": bar("1", "1", "1", "1", "1"),
				"2024-02-01": bar("1", "1", "1", "1", "1"),
			}},
			want:    1,
			checkFn: func(t *testing.T, rep Report) { require.Equal(t, 1, rep.BadDates) },
		},
		{
			name: "column missing for whole symbol",
			series: model.RawSeries{Symbol: "A", Bars: map[string]model.RawBar{
				"2024-02-01": bar("1", "1", "1", "1", ""),
				"2024-02-02": bar("1", "1", "1", "1", "x"),
			}},
			want:    0,
			checkFn: func(t *testing.T, rep Report) { require.Equal(t, 2, rep.DroppedMissing) },
		},
		{
			name: "non-positive price",
			series: model.RawSeries{Symbol: "A", Bars: map[string]model.RawBar{
				"2024-02-01": bar("0", "1", "1", "1", "1"),
				"2024-02-02": bar("1", "1", "-1", "1", "1"),
				"2024-02-05": bar("1", "1", "1", "1", "1"),
			}},
			want:    1,
			checkFn: func(t *testing.T, rep Report) { require.Equal(t, 2, rep.DroppedInvalid) },
		},
		{
			name: "negative volume",
			series: model.RawSeries{Symbol: "A", Bars: map[string]model.RawBar{
				"2024-02-01": bar("1", "1", "1", "1", "-5"),
			}},
			want:    0,
			checkFn: func(t *testing.T, rep Report) { require.Equal(t, 1, rep.DroppedInvalid) },
		},
		{
			name: "price overflows float64",
			series: model.RawSeries{Symbol: "A", Bars: map[string]model.RawBar{
				"2024-02-01": bar("1e400", "1", "1", "1", "1"),
				"2024-02-02": bar("1", "1", "1e-400", "1", "1"),
				"2024-02-05": bar("1", "1", "1", "1", "1"),
			}},
			want:    1,
			checkFn: func(t *testing.T, rep Report) { require.Equal(t, 2, rep.DroppedInvalid) },
		},
		{
			name: "volume overflows int64",
			series: model.RawSeries{Symbol: "A", Bars: map[string]model.RawBar{
				"2024-02-01": bar("1", "1", "1", "1", "1e20"),
				"2024-02-02": bar("1", "1", "1", "1", "9223372036854775807.9"),
			}},
			want: 1,
			checkFn: func(t *testing.T, rep Report) {
				require.Equal(t, 1, rep.DroppedInvalid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, rep := Normalize([]model.RawSeries{tt.series}, Options{Now: now})
			require.Len(t, batch, tt.want)
			tt.checkFn(t, rep)
			for _, r := range batch {
				require.NoError(t, r.Validate())
			}
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	batch, rep := Normalize(nil, Options{Now: now})
	require.Empty(t, batch)
	require.Equal(t, Report{}, rep)
}

func TestCutoff(t *testing.T) {
	got := Cutoff(time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("EST", -5*3600)), 1)
	require.Equal(t, time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC), got)
}
