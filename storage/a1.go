package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// A1 notation helpers. Only the shapes the adapter produces are supported:
// whole-column ranges ("Sheet1!A:I") and single cells ("Sheet1!D7").

func columnsRange(sheet string) string {
	return fmt.Sprintf("%s!%s:%s", sheet, columnName(0), columnName(numColumns-1))
}

func cellRef(sheet string, col, row int) string {
	return fmt.Sprintf("%s!%s%d", sheet, columnName(col), row)
}

// columnName converts a zero-based column index to its letter form.
func columnName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

func columnIndex(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column")
	}
	idx := 0
	for _, r := range strings.ToUpper(name) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("bad column %q", name)
		}
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1, nil
}

func splitSheet(ref string) (string, string, error) {
	i := strings.LastIndex(ref, "!")
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("range %q: missing sheet", ref)
	}
	return strings.Trim(ref[:i], "'"), ref[i+1:], nil
}

// parseColumns parses "Sheet!A:I" into the sheet and inclusive column bounds.
func parseColumns(ref string) (sheet string, first, last int, err error) {
	sheet, cols, err := splitSheet(ref)
	if err != nil {
		return "", 0, 0, err
	}
	from, to, ok := strings.Cut(cols, ":")
	if !ok {
		return "", 0, 0, fmt.Errorf("range %q: expected column span", ref)
	}
	if first, err = columnIndex(from); err != nil {
		return "", 0, 0, fmt.Errorf("range %q: %w", ref, err)
	}
	if last, err = columnIndex(to); err != nil {
		return "", 0, 0, fmt.Errorf("range %q: %w", ref, err)
	}
	if last < first {
		return "", 0, 0, fmt.Errorf("range %q: inverted columns", ref)
	}
	return sheet, first, last, nil
}

// parseCell parses "Sheet!D7" into the sheet, zero-based column and one-based row.
func parseCell(ref string) (sheet string, col, row int, err error) {
	sheet, cell, err := splitSheet(ref)
	if err != nil {
		return "", 0, 0, err
	}
	i := strings.IndexFunc(cell, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return "", 0, 0, fmt.Errorf("cell %q: malformed", ref)
	}
	if col, err = columnIndex(cell[:i]); err != nil {
		return "", 0, 0, fmt.Errorf("cell %q: %w", ref, err)
	}
	row, err = strconv.Atoi(cell[i:])
	if err != nil || row < 1 {
		return "", 0, 0, fmt.Errorf("cell %q: bad row", ref)
	}
	return sheet, col, row, nil
}
