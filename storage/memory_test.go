package storage

import (
	"context"
	"reflect"
	"testing"
)

func TestMemoryStoreTrimsTrailingCells(t *testing.T) {
	m := NewMemoryStore("Sheet1", []string{"a", "b", "", ""}, []string{"", ""}, []string{"c"}, []string{""})

	rows, err := m.GetRange(context.Background(), "Sheet1!A:I")
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	want := [][]string{{"a", "b"}, nil, {"c"}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %q", len(want), len(rows), rows)
	}
	for i := range want {
		if len(rows[i]) != len(want[i]) || (len(want[i]) > 0 && !reflect.DeepEqual(rows[i], want[i])) {
			t.Fatalf("row %d: got %q want %q", i, rows[i], want[i])
		}
	}
}

func TestMemoryStoreRespectsColumnBounds(t *testing.T) {
	m := NewMemoryStore("Sheet1", []string{"a", "b", "c", "d"})
	rows, err := m.GetRange(context.Background(), "Sheet1!B:C")
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"b", "c"}}) {
		t.Fatalf("unexpected rows %q", rows)
	}
}

func TestMemoryStoreUpdateCellGrowsSheet(t *testing.T) {
	m := NewMemoryStore("Sheet1", Header)
	if err := m.UpdateCell(context.Background(), "Sheet1!D3", "Done"); err != nil {
		t.Fatalf("update cell: %v", err)
	}
	rows := m.Rows("Sheet1")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[2], []string{"", "", "", "Done"}) {
		t.Fatalf("unexpected row %q", rows[2])
	}
}

func TestMemoryStoreKeepsSheetsApart(t *testing.T) {
	m := NewMemoryStore("Sheet1", Header)
	if err := m.AppendRow(context.Background(), "Other!A:I", []string{"x"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(m.Rows("Sheet1")) != 1 || len(m.Rows("Other")) != 1 {
		t.Fatalf("rows leaked between sheets")
	}
}
