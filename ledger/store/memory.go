// Package store provides in-process ledger.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/attendance-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records []ledger.Record
	written bool
}

func NewMemory(records ...ledger.Record) *Memory {
	m := &Memory{}
	if len(records) > 0 {
		m.records = append([]ledger.Record(nil), records...)
		m.written = true
	}
	return m
}

// LoadAll returns a copy of every record in write order.
func (m *Memory) LoadAll(_ context.Context) ([]ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Record, len(m.records))
	copy(result, m.records)
	return result, nil
}

// RewriteAll replaces the whole set with a copy of records.
func (m *Memory) RewriteAll(_ context.Context, records []ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(make([]ledger.Record, 0, len(records)), records...)
	m.written = true
	return nil
}

// Append adds one record at the end.
func (m *Memory) Append(_ context.Context, record ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	m.written = true
	return nil
}

// Exists reports whether anything was ever written.
func (m *Memory) Exists(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.written, nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

var (
	_ ledger.Store  = (*Memory)(nil)
	_ ledger.Prober = (*Memory)(nil)
)
