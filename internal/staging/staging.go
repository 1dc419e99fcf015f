package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

const parallelism = 4

// rawRow is one provider bar before normalization.
type rawRow struct {
	Symbol string `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Date   string `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Open   string `parquet:"name=open, type=BYTE_ARRAY, convertedtype=UTF8"`
	High   string `parquet:"name=high, type=BYTE_ARRAY, convertedtype=UTF8"`
	Low    string `parquet:"name=low, type=BYTE_ARRAY, convertedtype=UTF8"`
	Close  string `parquet:"name=close, type=BYTE_ARRAY, convertedtype=UTF8"`
	Volume string `parquet:"name=volume, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// recordRow is one canonical record.
type recordRow struct {
	Timestamp int64   `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Symbol    string  `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Open      float64 `parquet:"name=open, type=DOUBLE"`
	High      float64 `parquet:"name=high, type=DOUBLE"`
	Low       float64 `parquet:"name=low, type=DOUBLE"`
	Close     float64 `parquet:"name=close, type=DOUBLE"`
	Volume    int64   `parquet:"name=volume, type=INT64"`
}

// WriteRaw writes all bars of series to path and returns the number of rows written.
func WriteRaw(path string, series []model.RawSeries) (int, error) {
	rows := make([]any, 0)
	for _, s := range series {
		for date, b := range s.Bars {
			rows = append(rows, &rawRow{
				Symbol: s.Symbol,
				Date:   date,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			})
		}
	}
	if err := write(path, new(rawRow), rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ReadRaw reads a raw file back into per-symbol series, in first-seen symbol order.
func ReadRaw(path string) ([]model.RawSeries, error) {
	var rows []rawRow
	if err := read(path, new(rawRow), &rows); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var series []model.RawSeries
	for _, r := range rows {
		i, ok := index[r.Symbol]
		if !ok {
			i = len(series)
			index[r.Symbol] = i
			series = append(series, model.RawSeries{Symbol: r.Symbol, Bars: make(map[string]model.RawBar)})
		}
		series[i].Bars[r.Date] = model.RawBar{
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return series, nil
}

// WriteBatch writes canonical records to path.
func WriteBatch(path string, batch model.Batch) error {
	rows := make([]any, 0, len(batch))
	for _, r := range batch {
		rows = append(rows, &recordRow{
			Timestamp: r.Timestamp.UnixMilli(),
			Symbol:    r.Symbol,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return write(path, new(recordRow), rows)
}

// ReadBatch reads canonical records from path in file order.
func ReadBatch(path string) (model.Batch, error) {
	var rows []recordRow
	if err := read(path, new(recordRow), &rows); err != nil {
		return nil, err
	}

	batch := make(model.Batch, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, model.Record{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Symbol:    r.Symbol,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return batch, nil
}

// write streams rows into a temp file next to path, then renames it into place.
func write(path string, schema any, rows []any) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	fw, err := local.NewLocalFileWriter(tmpPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", tmpPath, err)
	}

	pw, err := writer.NewParquetWriter(fw, schema, parallelism)
	if err != nil {
		fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename staging file: %w", err)
	}
	return nil
}

// read loads every row of path into dst, a pointer to a slice of the schema type.
func read(path string, schema any, dst any) error {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, schema, parallelism)
	if err != nil {
		return fmt.Errorf("create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n == 0 {
		return nil
	}

	switch rows := dst.(type) {
	case *[]rawRow:
		*rows = make([]rawRow, n)
	case *[]recordRow:
		*rows = make([]recordRow, n)
	default:
		return fmt.Errorf("unsupported row type %T", dst)
	}

	if err := pr.Read(dst); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
