package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// TableStore is a RowStore kept in Azure Table Storage. Every sheet row is an
// entity partitioned by sheet name with the zero padded row number as RowKey
// and one property per column letter.
type TableStore struct {
	table *aztables.Client
}

// NewTableStore creates a TableStore from the given connection string. SDK
// retries are disabled; a failed call surfaces to the caller unchanged.
func NewTableStore(connStr, table string) (*TableStore, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &TableStore{table: svc.NewClient(table)}, nil
}

// CreateTable creates the backing table, tolerating an existing one.
func (t *TableStore) CreateTable(ctx context.Context) error {
	_, err := t.table.CreateTable(ctx, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
	}
	return err
}

// WriteHeader stores the header row of sheet, replacing any existing one.
func (t *TableStore) WriteHeader(ctx context.Context, sheet string) error {
	payload, err := json.Marshal(rowEntity(sheet, 1, 0, Header))
	if err != nil {
		return err
	}
	_, err = t.table.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

func (t *TableStore) GetRange(ctx context.Context, rng string) ([][]string, error) {
	sheet, first, last, err := parseColumns(rng)
	if err != nil {
		return nil, err
	}
	filter := partitionFilter(sheet)
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	byRow := map[int][]string{}
	maxRow := 0
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var props map[string]any
			if err := json.Unmarshal(raw, &props); err != nil {
				return nil, err
			}
			rk, _ := props["RowKey"].(string)
			row, err := strconv.Atoi(rk)
			if err != nil || row < 1 {
				continue
			}
			cells := make([]string, 0, last-first+1)
			for col := first; col <= last; col++ {
				v, _ := props[columnName(col)].(string)
				cells = append(cells, v)
			}
			byRow[row] = trimTrailingEmpty(cells)
			maxRow = max(maxRow, row)
		}
	}
	rows := make([][]string, maxRow)
	for row, cells := range byRow {
		rows[row-1] = cells
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// AppendRow inserts the row after the highest existing row number. Two writers
// racing for the same row number make one insert fail with a conflict.
func (t *TableStore) AppendRow(ctx context.Context, rng string, values []string) error {
	sheet, first, _, err := parseColumns(rng)
	if err != nil {
		return err
	}
	last, err := t.lastRow(ctx, sheet)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rowEntity(sheet, last+1, first, values))
	if err != nil {
		return err
	}
	_, err = t.table.AddEntity(ctx, payload, nil)
	return err
}

func (t *TableStore) UpdateCell(ctx context.Context, cell, value string) error {
	sheet, col, row, err := parseCell(cell)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]any{
		"PartitionKey":  sheet,
		"RowKey":        rowKey(row),
		columnName(col): value,
	})
	if err != nil {
		return err
	}
	_, err = t.table.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeMerge})
	return err
}

func (t *TableStore) lastRow(ctx context.Context, sheet string) (int, error) {
	filter := partitionFilter(sheet)
	sel := "RowKey"
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter, Select: &sel})
	last := 0
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		for _, raw := range resp.Entities {
			var ent aztables.Entity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return 0, err
			}
			if n, err := strconv.Atoi(ent.RowKey); err == nil {
				last = max(last, n)
			}
		}
	}
	return last, nil
}

func rowEntity(sheet string, row, first int, values []string) map[string]any {
	ent := map[string]any{
		"PartitionKey": sheet,
		"RowKey":       rowKey(row),
	}
	for i, v := range values {
		ent[columnName(first+i)] = v
	}
	return ent
}

// Row keys sort lexically, so they are padded to keep numeric order.
func rowKey(row int) string {
	return fmt.Sprintf("%010d", row)
}

func partitionFilter(sheet string) string {
	return "PartitionKey eq '" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
