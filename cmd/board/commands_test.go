package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"workboard/api"
	"workboard/domain"
	"workboard/notify"
	"workboard/storage"
)

func newServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore("Sheet1", storage.Header, []string{"Acme", "fix bug", "", "In Progress", "High"})
	logger, _ := logtest.NewNullLogger()
	e := echo.New()
	hub := notify.NewHub()
	api.Register(e, storage.NewAdapter(store, "Sheet1"), hub, hub, logger)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListTable(t *testing.T) {
	srv, _ := newServer(t)
	out, err := run(t, "list", "--server", srv.URL, "--view", "table")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Acme") || !strings.Contains(out, "In Progress") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestListRejectsUnknownView(t *testing.T) {
	srv, _ := newServer(t)
	if _, err := run(t, "list", "--server", srv.URL, "--view", "gantt"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAddThenMove(t *testing.T) {
	srv, store := newServer(t)

	out, err := run(t, "add", "--server", srv.URL, "--project", "Hooli", "--priority", "low")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "added Hooli") {
		t.Fatalf("unexpected add output %q", out)
	}

	out, err = run(t, "move", "3", "in review", "--server", srv.URL)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !strings.Contains(out, "moved #3 to In Review") {
		t.Fatalf("unexpected move output %q", out)
	}
	row := store.Rows("Sheet1")[2]
	if row[0] != "Hooli" || row[3] != string(domain.InReview) || row[4] != "low" {
		t.Fatalf("unexpected stored row %v", row)
	}
}

func TestAddRequiresProject(t *testing.T) {
	srv, _ := newServer(t)
	if _, err := run(t, "add", "--server", srv.URL); err == nil {
		t.Fatal("expected error")
	}
}

func TestMoveRejectsBadArgs(t *testing.T) {
	srv, _ := newServer(t)
	if _, err := run(t, "move", "x", "Done", "--server", srv.URL); err == nil {
		t.Fatal("expected id error")
	}
	if _, err := run(t, "move", "2", "Blocked", "--server", srv.URL); err == nil {
		t.Fatal("expected progress error")
	}
	if _, err := run(t, "move", "9", "Done", "--server", srv.URL); err == nil {
		t.Fatal("expected unknown item error")
	}
}
