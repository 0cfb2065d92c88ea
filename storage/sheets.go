package storage

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Values are written as given so that what a client submits is what it reads back.
const valueInputOption = "RAW"

// SheetsStore is a RowStore backed by a Google spreadsheet.
type SheetsStore struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
}

// NewSheetsStore connects to the spreadsheet using the given client options,
// typically credentials.
func NewSheetsStore(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &SheetsStore{values: svc.Spreadsheets.Values, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsStore) GetRange(ctx context.Context, rng string) ([][]string, error) {
	resp, err := s.values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, rng string, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsStore) UpdateCell(ctx context.Context, cell, value string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.values.Update(s.spreadsheetID, cell, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	return err
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
