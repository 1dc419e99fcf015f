package store

import (
	"context"
	"fmt"
	"log/slog"

	jet "github.com/go-jet/jet/v2/postgres"
	"github.com/jackc/pgx/v5"

	"github.com/ohlcv-etl/ohlcv/internal/model"
	"github.com/ohlcv-etl/ohlcv/internal/store/table"
)

// Postgres opens sessions on a PostgreSQL or TimescaleDB server.
type Postgres struct {
	connString string
	table      string
	logger     *slog.Logger
}

// NewPostgres creates a Postgres opener for table.
func NewPostgres(connString, tableName string, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{connString: connString, table: tableName, logger: logger}
}

// Open connects to the server. Connection failures surface as ErrUnavailable.
func (p *Postgres) Open(ctx context.Context) (Session, error) {
	conn, err := pgx.Connect(ctx, p.connString)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %w", ErrUnavailable, err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrUnavailable, err)
	}

	return &pgSession{
		conn:   conn,
		name:   p.table,
		t:      table.Named("", p.table),
		logger: p.logger,
	}, nil
}

type pgSession struct {
	conn   *pgx.Conn
	name   string
	t      *table.OhlcvTable
	logger *slog.Logger
}

func (s *pgSession) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		"timestamp" TIMESTAMP,
		symbol VARCHAR,
		open DOUBLE PRECISION,
		high DOUBLE PRECISION,
		low DOUBLE PRECISION,
		close DOUBLE PRECISION,
		volume BIGINT,
		UNIQUE(symbol, "timestamp")
	)`, quoteIdent(s.name))

	if _, err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.name, err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_name = $1 AND table_schema = current_schema()
	`, s.name)
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", s.name, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", s.name, err)
	}

	if err := CheckColumns(s.name, names); err != nil {
		return err
	}

	// Unique indexes cover both UNIQUE and PRIMARY KEY constraints.
	rows, err = s.conn.Query(ctx, `
		SELECT string_agg(a.attname, ',')
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = to_regclass($1) AND i.indisunique AND i.indpred IS NULL
		GROUP BY i.indexrelid
	`, quoteIdent(s.name))
	if err != nil {
		return fmt.Errorf("read unique indexes of %s: %w", s.name, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("read unique indexes of %s: %w", s.name, err)
	}

	return CheckUniqueKey(s.name, keys)
}

// BulkMerge copies batch into a temp table and merges it in one transaction.
func (s *pgSession) BulkMerge(ctx context.Context, batch model.Batch) (int64, error) {
	batch = batch.Dedupe()
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stageName := StageTableName()
	createStage := fmt.Sprintf(`CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP`,
		quoteIdent(stageName), quoteIdent(s.name))
	if _, err := tx.Exec(ctx, createStage); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{stageName}, Columns,
		pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
			r := batch[i]
			return []any{r.Timestamp.UTC(), r.Symbol, r.Open, r.High, r.Low, r.Close, r.Volume}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy into staging table: %w", err)
	}

	query, args := mergeStatement(s.t, table.Named("", stageName)).Sql()
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("merge staged rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit merge: %w", err)
	}

	s.logger.Debug("merged staged rows", "staged", copied, "inserted", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

func (s *pgSession) InsertRow(ctx context.Context, rec model.Record) (bool, error) {
	query, args := insertRowStatement(s.t, rec).Sql()
	tag, err := s.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", rec.Key(), err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *pgSession) Count(ctx context.Context) (int64, error) {
	query, args := jet.SELECT(jet.COUNT(jet.STAR)).FROM(s.t).Sql()

	var n int64
	if err := s.conn.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.name, err)
	}
	return n, nil
}

func (s *pgSession) Coverage(ctx context.Context) ([]Coverage, error) {
	rows, err := s.conn.Query(ctx, fmt.Sprintf(`
		SELECT symbol, COUNT(*), MIN("timestamp"), MAX("timestamp")
		FROM %s GROUP BY symbol ORDER BY symbol
	`, quoteIdent(s.name)))
	if err != nil {
		return nil, fmt.Errorf("query coverage: %w", err)
	}
	defer rows.Close()

	return scanCoverage(rows)
}

func (s *pgSession) Close() error {
	return s.conn.Close(context.Background())
}

// mergeStatement inserts every staged row that does not collide with a stored key.
func mergeStatement(t, stage *table.OhlcvTable) jet.InsertStatement {
	return t.INSERT(t.AllColumns).
		QUERY(
			jet.SELECT(stage.AllColumns).
				FROM(stage),
		).
		ON_CONFLICT(t.Symbol, t.Timestamp).DO_NOTHING()
}

func insertRowStatement(t *table.OhlcvTable, rec model.Record) jet.InsertStatement {
	return t.INSERT(t.AllColumns).
		VALUES(rec.Timestamp.UTC(), rec.Symbol, rec.Open, rec.High, rec.Low, rec.Close, rec.Volume).
		ON_CONFLICT(t.Symbol, t.Timestamp).DO_NOTHING()
}
