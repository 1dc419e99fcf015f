package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ohlcv-etl/ohlcv/internal/loader"
	"github.com/ohlcv-etl/ohlcv/internal/model"
)

// seedColumns are the CSV header names a seed file must provide, in any order.
var seedColumns = []string{"timestamp", "symbol", "open", "high", "low", "close", "volume"}

var seedTimeLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Seed loads a CSV of canonical rows with row-at-a-time inserts.
// Lines that cannot be parsed are logged and skipped.
func (p *Pipeline) Seed(ctx context.Context, path string) (loader.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return loader.Result{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	batch, parseErrs, err := ReadSeedCSV(f)
	if err != nil {
		return loader.Result{}, fmt.Errorf("read seed file: %w", err)
	}
	for _, perr := range parseErrs {
		p.logger.Warn("skipping seed line", "path", path, "error", perr)
	}
	p.logger.Info("loaded seed file", "path", path, "records", len(batch), "unparsed", len(parseErrs))

	return p.engine.MergeWithMode(ctx, batch, loader.ModeRow)
}

// LineError is a seed CSV line that could not be parsed.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ReadSeedCSV parses a header-mapped CSV into records. Unparseable lines are returned
// as LineErrors; err is set only when the file itself is unreadable.
func ReadSeedCSV(r io.Reader) (model.Batch, []*LineError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	ordering, err := determineColumnOrder(header)
	if err != nil {
		return nil, nil, err
	}

	var batch model.Batch
	var lineErrs []*LineError
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			lineErrs = append(lineErrs, &LineError{Line: line, Err: err})
			continue
		}

		rec, err := parseSeedRecord(record, ordering)
		if err != nil {
			lineErrs = append(lineErrs, &LineError{Line: line, Err: err})
			continue
		}
		batch = append(batch, rec)
	}

	return batch, lineErrs, nil
}

func determineColumnOrder(header []string) (map[string]int, error) {
	ordering := make(map[string]int, len(header))
	for i, name := range header {
		ordering[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range seedColumns {
		if _, ok := ordering[col]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", col)
		}
	}
	return ordering, nil
}

func parseSeedRecord(record []string, ordering map[string]int) (model.Record, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[ordering[name]])
	}

	ts, err := parseSeedTime(field("timestamp"))
	if err != nil {
		return model.Record{}, err
	}

	var nums [5]decimal.Decimal
	for i, name := range []string{"open", "high", "low", "close", "volume"} {
		d, err := decimal.NewFromString(field(name))
		if err != nil {
			return model.Record{}, fmt.Errorf("parse %s %q: %w", name, field(name), err)
		}
		nums[i] = d
	}

	return model.Record{
		Timestamp: ts,
		Symbol:    strings.ToUpper(field("symbol")),
		Open:      nums[0].InexactFloat64(),
		High:      nums[1].InexactFloat64(),
		Low:       nums[2].InexactFloat64(),
		Close:     nums[3].InexactFloat64(),
		Volume:    nums[4].IntPart(),
	}, nil
}

func parseSeedTime(s string) (time.Time, error) {
	for _, layout := range seedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}
