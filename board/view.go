package board

import (
	"workboard/domain"
)

type ViewMode int

const (
	KanbanMode ViewMode = iota
	TableMode
)

func (m ViewMode) String() string {
	if m == TableMode {
		return "table"
	}
	return "kanban"
}

// ViewState is the presentation state of one board session. It is passed to
// the render functions rather than kept by the board.
type ViewState struct {
	Mode ViewMode
}

// Toggle switches between the kanban and table presentations.
func (s ViewState) Toggle() ViewState {
	if s.Mode == KanbanMode {
		return ViewState{Mode: TableMode}
	}
	return ViewState{Mode: KanbanMode}
}

// Card is one item as shown in a kanban column.
type Card struct {
	ID            int
	Project       string
	Description   string
	DueLabel      string
	Priority      domain.Priority
	PriorityClass string
}

type Column struct {
	Key    string
	Status domain.Progress
	Cards  []Card
}

type Kanban struct {
	Columns []Column
}

// Row is one item as shown in the flat table.
type Row struct {
	ID            int
	Project       string
	Description   string
	DueDate       string
	Progress      domain.Progress
	Priority      domain.Priority
	PriorityClass string
	Requester     string
	Assignee      string
	Category      string
}

type Table struct {
	Rows []Row
}

// View holds both presentations of one snapshot.
type View struct {
	Kanban Kanban
	Table  Table
}

// Render builds both presentations from scratch. Items keep their service
// order within every column and in the table.
func Render(items []domain.Item) View {
	return View{Kanban: RenderKanban(items), Table: RenderTable(items)}
}

func RenderKanban(items []domain.Item) Kanban {
	k := Kanban{Columns: make([]Column, len(domain.Progresses))}
	index := make(map[domain.Progress]int, len(domain.Progresses))
	for i, p := range domain.Progresses {
		k.Columns[i] = Column{Key: p.Key(), Status: p, Cards: []Card{}}
		index[p] = i
	}
	for _, it := range items {
		i, ok := index[it.Progress]
		if !ok {
			i = index[domain.NotStarted]
		}
		k.Columns[i].Cards = append(k.Columns[i].Cards, newCard(it))
	}
	return k
}

func RenderTable(items []domain.Item) Table {
	t := Table{Rows: make([]Row, 0, len(items))}
	for _, it := range items {
		due := it.DueDate
		if due == "" {
			due = "-"
		}
		t.Rows = append(t.Rows, Row{
			ID:            it.ID,
			Project:       it.Project,
			Description:   it.Description,
			DueDate:       due,
			Progress:      it.Progress,
			Priority:      it.Priority,
			PriorityClass: it.Priority.Class(),
			Requester:     it.Requester,
			Assignee:      it.Assignee,
			Category:      it.Category,
		})
	}
	return t
}

func newCard(it domain.Item) Card {
	due := it.DueDate
	if due == "" {
		due = "No due date"
	}
	return Card{
		ID:            it.ID,
		Project:       it.Project,
		Description:   it.Description,
		DueLabel:      due,
		Priority:      it.Priority,
		PriorityClass: it.Priority.Class(),
	}
}

// Column returns the column showing progress p.
func (k Kanban) Column(p domain.Progress) (Column, bool) {
	for _, c := range k.Columns {
		if c.Status == p {
			return c, true
		}
	}
	return Column{}, false
}

// Locate reports which column holds the card for item id.
func (k Kanban) Locate(id int) (domain.Progress, bool) {
	for _, c := range k.Columns {
		for _, card := range c.Cards {
			if card.ID == id {
				return c.Status, true
			}
		}
	}
	return "", false
}

// moveCard relocates the card to the end of the target column, returning a
// new Kanban; k is left untouched.
func (k Kanban) moveCard(id int, to domain.Progress) (Kanban, bool) {
	var (
		card  Card
		found bool
	)
	out := Kanban{Columns: make([]Column, len(k.Columns))}
	for i, c := range k.Columns {
		cards := make([]Card, 0, len(c.Cards))
		for _, cd := range c.Cards {
			if cd.ID == id && !found {
				card, found = cd, true
				continue
			}
			cards = append(cards, cd)
		}
		out.Columns[i] = Column{Key: c.Key, Status: c.Status, Cards: cards}
	}
	if !found {
		return k, false
	}
	for i := range out.Columns {
		if out.Columns[i].Status == to {
			out.Columns[i].Cards = append(out.Columns[i].Cards, card)
			return out, true
		}
	}
	return k, false
}
