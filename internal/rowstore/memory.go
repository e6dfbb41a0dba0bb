package rowstore

import (
	"fmt"
	"sync"
)

// MemoryStore keeps tables in process memory. It is the default dev backend
// and the test double for every service-level scenario.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memoryTable)}
}

func (s *MemoryStore) Table(name string) (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

func (s *MemoryStore) FindOrCreate(name string, header Row) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[name]; ok {
		return t, nil
	}
	t := &memoryTable{name: name, rows: []Row{header.Clone()}}
	s.tables[name] = t
	return t, nil
}

type memoryTable struct {
	name string
	mu   sync.RWMutex
	rows []Row
}

func (t *memoryTable) Name() string { return t.name }

func (t *memoryTable) Rows() ([]Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (t *memoryTable) Append(row Row) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, row.Clone())
	return nil
}

func (t *memoryTable) WriteCell(rowIdx, colIdx int, value string) error {
	return t.WriteCells(rowIdx, map[int]string{colIdx: value})
}

func (t *memoryTable) WriteCells(rowIdx int, cells map[int]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rowIdx < 0 || rowIdx >= len(t.rows) {
		return fmt.Errorf("row index %d out of range for table %s", rowIdx, t.name)
	}
	row := t.rows[rowIdx]
	for colIdx, value := range cells {
		if colIdx < 0 {
			return fmt.Errorf("column index %d out of range for table %s", colIdx, t.name)
		}
		// Writing past the current row width extends it, like a sheet does.
		for colIdx >= len(row) {
			row = append(row, "")
		}
		row[colIdx] = value
	}
	t.rows[rowIdx] = row
	return nil
}
