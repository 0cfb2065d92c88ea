package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workboard/domain"
)

// Fixed column positions of the tracker sheet.
const (
	colProject = iota
	colDescription
	colDueDate
	colProgress
	colPriority
	colRequester
	colAssignee
	colCategory
	colDateSubmitted
	numColumns
)

// firstDataRow is the sheet row number of the first item; row 1 is the header.
const firstDataRow = 2

// DateLayout formats the submission date the way an en-US locale date string does.
const DateLayout = "1/2/2006"

// Header is the header row written by storage-init and the in-memory store.
var Header = []string{
	"Project", "Description", "Due Date", "Progress", "Priority",
	"Requester", "Assignee", "Category", "Date Submitted",
}

// ErrInvalidRow is returned for item ids that cannot address a data row.
var ErrInvalidRow = errors.New("invalid row id")

// RowStore is the external table the adapter reads and writes. Ranges are in
// A1 notation.
type RowStore interface {
	GetRange(ctx context.Context, rng string) ([][]string, error)
	AppendRow(ctx context.Context, rng string, values []string) error
	UpdateCell(ctx context.Context, cell, value string) error
}

// Adapter maps sheet rows to items. The item id is the sheet row number, so
// it is only stable as long as nobody deletes or reorders rows out of band.
type Adapter struct {
	rows  RowStore
	sheet string
	now   func() time.Time
}

// NewAdapter creates an Adapter over the named sheet of rows.
func NewAdapter(rows RowStore, sheet string) *Adapter {
	if rows == nil {
		panic("storage.NewAdapter: row store is nil")
	}
	return &Adapter{rows: rows, sheet: sheet, now: time.Now}
}

// ListItems reads every data row. A sheet holding only a header, or nothing,
// yields an empty slice.
func (a *Adapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := a.rows.GetRange(ctx, columnsRange(a.sheet))
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	items := []domain.Item{}
	if len(rows) <= 1 {
		return items, nil
	}
	for i, row := range rows[1:] {
		items = append(items, rowToItem(i+firstDataRow, row))
	}
	return items, nil
}

// AppendItem writes a new row at the end of the sheet. Progress always starts
// as NotStarted and the submission date comes from the adapter clock.
func (a *Adapter) AppendItem(ctx context.Context, in domain.NewItem) error {
	row := make([]string, numColumns)
	row[colProject] = in.Project
	row[colDescription] = in.Description
	row[colDueDate] = in.DueDate
	row[colProgress] = string(domain.NotStarted)
	row[colPriority] = string(domain.PriorityOrDefault(in.Priority))
	row[colRequester] = in.Requester
	row[colAssignee] = in.Assignee
	row[colCategory] = in.Category
	row[colDateSubmitted] = a.now().Format(DateLayout)

	if err := a.rows.AppendRow(ctx, columnsRange(a.sheet), row); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// UpdateProgress overwrites the progress cell of row id and nothing else.
func (a *Adapter) UpdateProgress(ctx context.Context, id int, progress domain.Progress) error {
	if id < firstDataRow {
		return fmt.Errorf("%w: %d", ErrInvalidRow, id)
	}
	if err := a.rows.UpdateCell(ctx, cellRef(a.sheet, colProgress, id), string(progress)); err != nil {
		return fmt.Errorf("update row %d: %w", id, err)
	}
	return nil
}

func rowToItem(id int, row []string) domain.Item {
	cell := func(col int) string {
		if col < len(row) {
			return row[col]
		}
		return ""
	}
	return domain.Item{
		ID:            id,
		Project:       cell(colProject),
		Description:   cell(colDescription),
		DueDate:       cell(colDueDate),
		Progress:      domain.NormalizeProgress(cell(colProgress)),
		Priority:      domain.PriorityOrDefault(cell(colPriority)),
		Requester:     cell(colRequester),
		Assignee:      cell(colAssignee),
		Category:      cell(colCategory),
		DateSubmitted: cell(colDateSubmitted),
	}
}
