package storage

import "testing"

func TestColumnNames(t *testing.T) {
	tests := []struct {
		idx  int
		name string
	}{
		{0, "A"}, {3, "D"}, {8, "I"}, {25, "Z"}, {26, "AA"}, {27, "AB"}, {701, "ZZ"}, {702, "AAA"},
	}
	for _, tt := range tests {
		if got := columnName(tt.idx); got != tt.name {
			t.Fatalf("columnName(%d) = %q, want %q", tt.idx, got, tt.name)
		}
		if got, err := columnIndex(tt.name); err != nil || got != tt.idx {
			t.Fatalf("columnIndex(%q) = %d, %v", tt.name, got, err)
		}
	}
}

func TestRangeRefs(t *testing.T) {
	if got := columnsRange("Sheet1"); got != "Sheet1!A:I" {
		t.Fatalf("columnsRange = %q", got)
	}
	if got := cellRef("Sheet1", colProgress, 7); got != "Sheet1!D7" {
		t.Fatalf("cellRef = %q", got)
	}
}

func TestParseColumns(t *testing.T) {
	sheet, first, last, err := parseColumns("'My Sheet'!B:D")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sheet != "My Sheet" || first != 1 || last != 3 {
		t.Fatalf("got %q %d %d", sheet, first, last)
	}
	for _, bad := range []string{"A:I", "Sheet1!A", "Sheet1!D:A", "Sheet1!1:2"} {
		if _, _, _, err := parseColumns(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseCell(t *testing.T) {
	sheet, col, row, err := parseCell("Sheet1!D12")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sheet != "Sheet1" || col != 3 || row != 12 {
		t.Fatalf("got %q %d %d", sheet, col, row)
	}
	for _, bad := range []string{"D12", "Sheet1!12", "Sheet1!D", "Sheet1!D0", "Sheet1!D-1"} {
		if _, _, _, err := parseCell(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
