package store

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckColumns(t *testing.T) {
	tests := []struct {
		name    string
		cols    []string
		wantErr bool
	}{
		{"canonical order", []string{"timestamp", "symbol", "open", "high", "low", "close", "volume"}, false},
		{"any order and case", []string{"SYMBOL", "volume", "Close", "low", "high", "open", "timestamp"}, false},
		{"missing volume", []string{"timestamp", "symbol", "open", "high", "low", "close"}, true},
		{"extra column", []string{"timestamp", "symbol", "open", "high", "low", "close", "volume", "vwap"}, true},
		{"renamed column", []string{"ts", "symbol", "open", "high", "low", "close", "volume"}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckColumns("ohlcv_data", tt.cols)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckColumns() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("error should wrap ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestCheckUniqueKey(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		wantErr bool
	}{
		{"unique constraint", []string{"symbol,timestamp"}, false},
		{"primary key reversed", []string{"timestamp, symbol"}, false},
		{"quoted upper case", []string{`SYMBOL,"timestamp"`}, false},
		{"one of several", []string{"symbol", "symbol,timestamp"}, false},
		{"no constraints", nil, true},
		{"symbol only", []string{"symbol"}, true},
		{"wider key", []string{"symbol,timestamp,open"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUniqueKey("ohlcv_data", tt.keys)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckUniqueKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("error should wrap ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestStageTableName(t *testing.T) {
	a, b := StageTableName(), StageTableName()
	if a == b {
		t.Errorf("StageTableName() returned %q twice", a)
	}
	if !strings.HasPrefix(a, "ohlcv_stage_") || strings.Contains(a, "-") {
		t.Errorf("StageTableName() = %q, want ohlcv_stage_<hex>", a)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdent() = %s", got)
	}
}
