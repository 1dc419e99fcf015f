package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcboeker/go-duckdb"

	"github.com/ohlcv-etl/ohlcv/internal/model"
)

// DuckDB opens sessions on a local DuckDB file.
type DuckDB struct {
	path   string
	table  string
	logger *slog.Logger
}

// NewDuckDB creates a DuckDB opener for table in the database file at path.
func NewDuckDB(path, table string, logger *slog.Logger) *DuckDB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DuckDB{path: path, table: table, logger: logger}
}

// Open opens the database file and pins a single connection.
// A file locked by another process surfaces as ErrUnavailable.
func (d *DuckDB) Open(ctx context.Context) (Session, error) {
	db, err := sql.Open("duckdb", d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, d.path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrUnavailable, d.path, err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: acquire connection: %w", ErrUnavailable, err)
	}

	return &duckSession{
		db:     db,
		conn:   conn,
		table:  d.table,
		logger: d.logger,
	}, nil
}

type duckSession struct {
	db     *sql.DB
	conn   *sql.Conn
	table  string
	logger *slog.Logger
}

func (s *duckSession) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		"timestamp" TIMESTAMP,
		symbol VARCHAR,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		volume BIGINT,
		UNIQUE(symbol, "timestamp")
	)`, quoteIdent(s.table))

	if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_name = ? AND table_schema = current_schema()
	`, s.table)
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", s.table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan column name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read columns of %s: %w", s.table, err)
	}

	if err := CheckColumns(s.table, names); err != nil {
		return err
	}

	keys, err := s.uniqueKeys(ctx)
	if err != nil {
		return err
	}
	return CheckUniqueKey(s.table, keys)
}

// uniqueKeys lists the column sets of the table's UNIQUE and PRIMARY KEY constraints.
func (s *duckSession) uniqueKeys(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT list_aggregate(constraint_column_names, 'string_agg', ',')
		FROM duckdb_constraints()
		WHERE table_name = ? AND schema_name = current_schema()
		  AND constraint_type IN ('UNIQUE', 'PRIMARY KEY')
	`, s.table)
	if err != nil {
		return nil, fmt.Errorf("read constraints of %s: %w", s.table, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan constraint: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read constraints of %s: %w", s.table, err)
	}
	return keys, nil
}

func (s *duckSession) BulkMerge(ctx context.Context, batch model.Batch) (int64, error) {
	batch = batch.Dedupe()
	if len(batch) == 0 {
		return 0, nil
	}

	// Temp tables live in the connection's temp catalog, never in the database file.
	stage := StageTableName()
	createStage := fmt.Sprintf(`CREATE TEMP TABLE %s (
		"timestamp" TIMESTAMP,
		symbol VARCHAR,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		volume BIGINT
	)`, quoteIdent(stage))
	if _, err := s.conn.ExecContext(ctx, createStage); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}
	defer func() {
		if _, err := s.conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS "+quoteIdent(stage)); err != nil {
			s.logger.Warn("failed to drop staging table", "table", stage, "error", err)
		}
	}()

	if err := s.appendRows(stage, batch); err != nil {
		return 0, fmt.Errorf("stage rows: %w", err)
	}

	cols := columnList()
	merge := fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT %s DO NOTHING`,
		quoteIdent(s.table), cols, cols, quoteIdent(stage), conflictTarget)

	res, err := s.conn.ExecContext(ctx, merge)
	if err != nil {
		return 0, fmt.Errorf("merge staged rows: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		s.logger.Debug("rows affected unavailable", "error", err)
		return 0, nil
	}
	return inserted, nil
}

// appendRows bulk-loads batch into the staging table through the native appender.
func (s *duckSession) appendRows(stage string, batch model.Batch) error {
	return s.conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}

		appender, err := duckdb.NewAppenderFromConn(dc, "", stage)
		if err != nil {
			return fmt.Errorf("create appender: %w", err)
		}

		for _, r := range batch {
			if err := appender.AppendRow(r.Timestamp.UTC(), r.Symbol, r.Open, r.High, r.Low, r.Close, r.Volume); err != nil {
				return errors.Join(fmt.Errorf("append %s: %w", r.Key(), err), appender.Close())
			}
		}

		return appender.Close()
	})
}

func (s *duckSession) InsertRow(ctx context.Context, rec model.Record) (bool, error) {
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT %s DO NOTHING`,
		quoteIdent(s.table), columnList(), conflictTarget)

	res, err := s.conn.ExecContext(ctx, insert,
		rec.Timestamp.UTC(), rec.Symbol, rec.Open, rec.High, rec.Low, rec.Close, rec.Volume)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", rec.Key(), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, nil
	}
	return n > 0, nil
}

func (s *duckSession) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

func (s *duckSession) Coverage(ctx context.Context) ([]Coverage, error) {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT symbol, COUNT(*), MIN("timestamp"), MAX("timestamp")
		FROM %s GROUP BY symbol ORDER BY symbol
	`, quoteIdent(s.table)))
	if err != nil {
		return nil, fmt.Errorf("query coverage: %w", err)
	}
	defer rows.Close()

	return scanCoverage(rows)
}

func (s *duckSession) Close() error {
	return errors.Join(s.conn.Close(), s.db.Close())
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCoverage(rows rowScanner) ([]Coverage, error) {
	var out []Coverage
	for rows.Next() {
		var c Coverage
		if err := rows.Scan(&c.Symbol, &c.Rows, &c.First, &c.Last); err != nil {
			return nil, fmt.Errorf("scan coverage: %w", err)
		}
		c.First = c.First.UTC()
		c.Last = c.Last.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read coverage: %w", err)
	}
	return out, nil
}
