package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"workboard/domain"
)

func TestRowKeySortsNumerically(t *testing.T) {
	keys := []string{rowKey(10), rowKey(2), rowKey(100), rowKey(1)}
	sort.Strings(keys)
	want := []string{rowKey(1), rowKey(2), rowKey(10), rowKey(100)}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("unexpected order %v", keys)
		}
	}
	if rowKey(7) != "0000000007" {
		t.Fatalf("unexpected row key %q", rowKey(7))
	}
}

func TestRowEntityUsesColumnLetters(t *testing.T) {
	ent := rowEntity("Sheet1", 5, 0, []string{"Acme", "", "2024-01-01", "Not Started"})
	if ent["PartitionKey"] != "Sheet1" || ent["RowKey"] != rowKey(5) {
		t.Fatalf("unexpected keys %v", ent)
	}
	if ent["A"] != "Acme" || ent["B"] != "" || ent["D"] != "Not Started" {
		t.Fatalf("unexpected columns %v", ent)
	}
	if _, ok := ent["E"]; ok {
		t.Fatalf("unexpected column E in %v", ent)
	}
}

func TestPartitionFilterEscapesQuotes(t *testing.T) {
	if got := partitionFilter("Bob's sheet"); got != "PartitionKey eq 'Bob''s sheet'" {
		t.Fatalf("unexpected filter %q", got)
	}
}

// Well known development storage account key.
const devStoreKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

var entityPath = regexp.MustCompile(`^rows\(PartitionKey='(.*)',RowKey='(.*)'\)$`)

// fakeTables serves the subset of the Table Storage REST API the store uses
// for a single table named "rows".
type fakeTables struct {
	mu       sync.Mutex
	entities map[string]map[string]any
	requests []string
	failAdd  bool
}

func entityID(pk, rk string) string { return pk + "|" + rk }

func (f *fakeTables) seed(entities ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entities {
		f.entities[entityID(e["PartitionKey"].(string), e["RowKey"].(string))] = e
	}
}

func (f *fakeTables) get(pk, rk string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entities[entityID(pk, rk)]
}

func (f *fakeTables) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/devstoreaccount1/")
	f.requests = append(f.requests, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json;odata=minimalmetadata")

	switch {
	case r.Method == http.MethodGet && path == "rows()":
		filter := r.URL.Query().Get("$filter")
		value := []map[string]any{}
		for _, e := range f.entities {
			if filter == "" || filter == partitionFilter(e["PartitionKey"].(string)) {
				value = append(value, e)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"value": value})
	case r.Method == http.MethodPost && path == "rows":
		var ent map[string]any
		if err := json.NewDecoder(r.Body).Decode(&ent); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := entityID(ent["PartitionKey"].(string), ent["RowKey"].(string))
		if _, exists := f.entities[id]; exists || f.failAdd {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"odata.error":{"code":"EntityAlreadyExists","message":{"lang":"en-US","value":"exists"}}}`))
			return
		}
		f.entities[id] = ent
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ent)
	case r.Method == http.MethodPatch && entityPath.MatchString(path):
		m := entityPath.FindStringSubmatch(path)
		var props map[string]any
		if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := entityID(m[1], m[2])
		ent := f.entities[id]
		if ent == nil {
			ent = map[string]any{}
		}
		for k, v := range props {
			ent[k] = v
		}
		ent["PartitionKey"], ent["RowKey"] = m[1], m[2]
		f.entities[id] = ent
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newTestTableStore(t *testing.T) (*TableStore, *fakeTables) {
	t.Helper()
	fake := &fakeTables{entities: map[string]map[string]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	connStr := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=" + devStoreKey +
		";TableEndpoint=" + srv.URL + "/devstoreaccount1"
	ts, err := NewTableStore(connStr, "rows")
	if err != nil {
		t.Fatalf("new table store: %v", err)
	}
	return ts, fake
}

func TestTableStoreGetRangeRebuildsRows(t *testing.T) {
	ts, fake := newTestTableStore(t)
	fake.seed(
		rowEntity("Sheet1", 1, 0, Header),
		rowEntity("Sheet1", 2, 0, []string{"Acme", "fix bug", "", "In Progress", "High", "", ""}),
		rowEntity("Sheet1", 4, 0, []string{"Globex"}),
		rowEntity("Sheet1", 5, 0, []string{"", ""}),
		rowEntity("Other", 6, 0, []string{"Elsewhere"}),
		map[string]any{"PartitionKey": "Sheet1", "RowKey": "meta", "A": "ignored"},
	)

	rows, err := ts.GetRange(context.Background(), "Sheet1!A:I")
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	want := [][]string{
		Header,
		{"Acme", "fix bug", "", "In Progress", "High"},
		nil,
		{"Globex"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows:\n got %q\nwant %q", rows, want)
	}

	items, err := NewAdapter(ts, "Sheet1").ListItems(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 3 || items[0].ID != 2 || items[1].ID != 3 || items[1].Project != "" || items[2].ID != 4 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestTableStoreGetRangeEmpty(t *testing.T) {
	ts, _ := newTestTableStore(t)
	rows, err := ts.GetRange(context.Background(), "Sheet1!A:I")
	if err != nil {
		t.Fatalf("get range: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %q", rows)
	}
}

func TestTableStoreAppendRowUsesNextRowNumber(t *testing.T) {
	ts, fake := newTestTableStore(t)
	fake.seed(
		rowEntity("Sheet1", 1, 0, Header),
		rowEntity("Sheet1", 2, 0, []string{"Acme"}),
		rowEntity("Sheet1", 5, 0, []string{"Globex"}),
		rowEntity("Other", 9, 0, []string{"Elsewhere"}),
	)

	if err := ts.AppendRow(context.Background(), "Sheet1!A:I", []string{"Hooli", "", "", "Not Started"}); err != nil {
		t.Fatalf("append row: %v", err)
	}
	got := fake.get("Sheet1", rowKey(6))
	if got == nil {
		t.Fatalf("expected entity at row 6, requests %v", fake.requests)
	}
	if got["A"] != "Hooli" || got["B"] != "" || got["D"] != "Not Started" {
		t.Fatalf("unexpected entity %v", got)
	}
}

func TestTableStoreAppendRowConflict(t *testing.T) {
	ts, fake := newTestTableStore(t)
	fake.failAdd = true

	err := ts.AppendRow(context.Background(), "Sheet1!A:I", []string{"Hooli"})
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict response error, got %v", err)
	}
}

func TestTableStoreUpdateCellMergesSingleColumn(t *testing.T) {
	ts, fake := newTestTableStore(t)
	fake.seed(
		rowEntity("Sheet1", 1, 0, Header),
		rowEntity("Sheet1", 3, 0, []string{"Globex", "ship", "", "Not Started", "Low"}),
	)

	if err := NewAdapter(ts, "Sheet1").UpdateProgress(context.Background(), 3, domain.Done); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	got := fake.get("Sheet1", rowKey(3))
	if got["D"] != "Done" || got["A"] != "Globex" || got["B"] != "ship" || got["E"] != "Low" {
		t.Fatalf("unexpected entity after merge %v", got)
	}
	last := fake.requests[len(fake.requests)-1]
	if last != "PATCH rows(PartitionKey='Sheet1',RowKey='"+rowKey(3)+"')" {
		t.Fatalf("expected a single merge request, got %q", last)
	}
}
