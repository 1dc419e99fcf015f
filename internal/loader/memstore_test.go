package loader

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ohlcv-etl/ohlcv/internal/model"
	"github.com/ohlcv-etl/ohlcv/internal/store"
)

// memStore is an in-memory store with the same first-write-wins rule as the real backends.
type memStore struct {
	mu       sync.Mutex
	rows     map[model.Key]model.Record
	order    []model.Key
	opened   int
	closed   int
	failNext bool // fail the next bulk merge
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[model.Key]model.Record)}
}

func (m *memStore) Open(context.Context) (store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
	return &memSession{m: m}, nil
}

func (m *memStore) snapshot() map[model.Key]model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.Key]model.Record, len(m.rows))
	for k, v := range m.rows {
		out[k] = v
	}
	return out
}

type memSession struct {
	m *memStore
}

func (s *memSession) EnsureSchema(context.Context) error { return nil }

func (s *memSession) BulkMerge(_ context.Context, batch model.Batch) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failNext {
		s.m.failNext = false
		return 0, errFake
	}
	var n int64
	for _, r := range batch {
		if s.insertLocked(r) {
			n++
		}
	}
	return n, nil
}

func (s *memSession) InsertRow(_ context.Context, r model.Record) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.insertLocked(r), nil
}

func (s *memSession) insertLocked(r model.Record) bool {
	k := r.Key()
	if _, ok := s.m.rows[k]; ok {
		return false
	}
	s.m.rows[k] = r
	s.m.order = append(s.m.order, k)
	return true
}

func (s *memSession) Count(context.Context) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return int64(len(s.m.rows)), nil
}

func (s *memSession) Coverage(context.Context) ([]store.Coverage, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	bySymbol := make(map[string]*store.Coverage)
	for _, r := range s.m.rows {
		c, ok := bySymbol[r.Symbol]
		if !ok {
			c = &store.Coverage{Symbol: r.Symbol, First: r.Timestamp, Last: r.Timestamp}
			bySymbol[r.Symbol] = c
		}
		c.Rows++
		if r.Timestamp.Before(c.First) {
			c.First = r.Timestamp
		}
		if r.Timestamp.After(c.Last) {
			c.Last = r.Timestamp
		}
	}

	out := make([]store.Coverage, 0, len(bySymbol))
	for _, c := range bySymbol {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b store.Coverage) int {
		if a.Symbol < b.Symbol {
			return -1
		}
		if a.Symbol > b.Symbol {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *memSession) Close() error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.closed++
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bar(symbol string, ts time.Time, o, h, l, c float64, v int64) model.Record {
	return model.Record{Timestamp: ts, Symbol: symbol, Open: o, High: h, Low: l, Close: c, Volume: v}
}
