package board

import (
	"strings"
	"testing"
)

func TestRenderTextKanban(t *testing.T) {
	out := RenderText(Render(sampleItems()), ViewState{})
	for _, want := range []string{"Not Started (1)", "In Progress (1)", "In Review (0)", "Done (0)", "#2 Acme", "#3 Globex", "fix bug"} {
		if !strings.Contains(out, want) {
			t.Errorf("kanban output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTextTable(t *testing.T) {
	out := RenderText(Render(sampleItems()), ViewState{Mode: TableMode})
	for _, want := range []string{"Project", "Progress", "Acme", "Globex", "Carol", "In Progress"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Not Started (") {
		t.Errorf("table output should not contain kanban columns:\n%s", out)
	}
}
