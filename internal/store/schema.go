package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Columns is the canonical column order of the OHLCV table.
var Columns = []string{"timestamp", "symbol", "open", "high", "low", "close", "volume"}

// CheckColumns compares an existing table's column names against Columns.
func CheckColumns(table string, names []string) error {
	have := make([]string, 0, len(names))
	for _, n := range names {
		have = append(have, strings.ToLower(n))
	}
	slices.Sort(have)

	want := slices.Clone(Columns)
	slices.Sort(want)

	if !slices.Equal(have, want) {
		return fmt.Errorf("%w: table %s has columns %v, want %v", ErrSchemaMismatch, table, have, want)
	}
	return nil
}

// conflictKey is the column set the merge's conflict rule relies on.
var conflictKey = []string{"symbol", "timestamp"}

// CheckUniqueKey reports ErrSchemaMismatch unless one of keys, each a comma-separated
// list of constraint columns, covers exactly symbol and timestamp.
func CheckUniqueKey(table string, keys []string) error {
	want := slices.Clone(conflictKey)
	slices.Sort(want)

	for _, key := range keys {
		var cols []string
		for _, c := range strings.Split(key, ",") {
			cols = append(cols, strings.ToLower(strings.Trim(strings.TrimSpace(c), `"`)))
		}
		slices.Sort(cols)
		if slices.Equal(cols, want) {
			return nil
		}
	}
	return fmt.Errorf("%w: table %s has no unique constraint on (symbol, timestamp)", ErrSchemaMismatch, table)
}

// StageTableName returns a unique name for a bulk staging table.
func StageTableName() string {
	return "ohlcv_stage_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnList renders Columns quoted and comma separated.
func columnList() string {
	quoted := make([]string, len(Columns))
	for i, c := range Columns {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

const conflictTarget = `(symbol, "timestamp")`
