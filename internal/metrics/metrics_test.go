package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Merge(t *testing.T) {
	r := New()

	r.Merge("bulk", 10, 7, 0, 50*time.Millisecond)
	r.Merge("bulk", 5, 0, 0, 10*time.Millisecond)
	r.Merge("row", 3, 1, 1, time.Millisecond)

	require.Equal(t, 15.0, testutil.ToFloat64(r.mergeAttempted.WithLabelValues("bulk")))
	require.Equal(t, 7.0, testutil.ToFloat64(r.mergeInserted.WithLabelValues("bulk")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.mergeRejected.WithLabelValues("row")))
	require.Equal(t, 2, testutil.CollectAndCount(r.mergeDuration))
}

func TestRecorder_FetchAndStage(t *testing.T) {
	r := New()

	r.FetchOutcome("success")
	r.FetchOutcome("success")
	r.FetchOutcome("fatal")
	r.StageRecords("transform", 42)
	r.MergeFailed("schema_mismatch")

	require.Equal(t, 2.0, testutil.ToFloat64(r.fetchOutcomes.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.fetchOutcomes.WithLabelValues("fatal")))
	require.Equal(t, 42.0, testutil.ToFloat64(r.stageRecords.WithLabelValues("transform")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.mergeFailures.WithLabelValues("schema_mismatch")))
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder

	r.Merge("row", 1, 1, 0, time.Second)
	r.MergeFailed("x")
	r.FetchOutcome("skip")
	r.StageRecords("extract", 1)
	require.Nil(t, r.Registry())
	require.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Merge("bulk", 4, 4, 0, time.Second)

	path := filepath.Join(t.TempDir(), "ohlcv.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `ohlcv_merge_rows_inserted_total{mode="bulk"} 4`), string(data))
}
