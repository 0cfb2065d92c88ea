package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process RowStore used for local development and tests.
// Like the Sheets API it drops trailing empty cells when reading.
type MemoryStore struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

// NewMemoryStore creates a store whose sheet holds the given rows, header first.
func NewMemoryStore(sheet string, rows ...[]string) *MemoryStore {
	m := &MemoryStore{sheets: map[string][][]string{}}
	for _, r := range rows {
		m.sheets[sheet] = append(m.sheets[sheet], append([]string(nil), r...))
	}
	return m
}

func (m *MemoryStore) GetRange(_ context.Context, rng string) ([][]string, error) {
	sheet, first, last, err := parseColumns(rng)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.sheets[sheet]
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		var cells []string
		if first < len(r) {
			end := min(last+1, len(r))
			cells = append(cells, r[first:end]...)
		}
		out = append(out, trimTrailingEmpty(cells))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *MemoryStore) AppendRow(_ context.Context, rng string, values []string) error {
	sheet, first, _, err := parseColumns(rng)
	if err != nil {
		return err
	}
	row := make([]string, first, first+len(values))
	row = append(row, values...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[sheet] = append(m.sheets[sheet], row)
	return nil
}

func (m *MemoryStore) UpdateCell(_ context.Context, cell, value string) error {
	sheet, col, row, err := parseCell(cell)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.sheets[sheet]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	r := rows[row-1]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = value
	rows[row-1] = r
	m.sheets[sheet] = rows
	return nil
}

// Rows returns a copy of the raw sheet contents.
func (m *MemoryStore) Rows(sheet string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.sheets[sheet]))
	for i, r := range m.sheets[sheet] {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func trimTrailingEmpty(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
