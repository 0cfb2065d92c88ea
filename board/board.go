// Package board keeps a client-side copy of the item list in sync with the
// item service and renders it as a kanban board and a flat table.
//
// The service is the only source of truth. Every refresh replaces the local
// snapshot wholesale, and a drag-and-drop move is applied locally first and
// then reconciled by refreshing, whether or not the write succeeded.
package board

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"workboard/domain"
)

// DefaultPollInterval is how often a board refreshes on its own.
const DefaultPollInterval = 30 * time.Second

// CreateFailedMessage is shown to the user when an item cannot be added.
const CreateFailedMessage = "Failed to add item. Please try again."

var (
	// ErrUnknownItem is returned when an id is not on the rendered board.
	ErrUnknownItem = errors.New("item not on board")
	// ErrDragEnded is returned when a finished drag is dropped again.
	ErrDragEnded = errors.New("drag already ended")
)

// Service is the item service as seen by the board.
type Service interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	CreateItem(ctx context.Context, in domain.NewItem) error
	UpdateProgress(ctx context.Context, id int, progress domain.Progress) error
}

// Form is the state of the new-item entry form.
type Form struct {
	Open   bool
	Fields domain.NewItem
}

// Options configures a Board. Every field is optional.
type Options struct {
	// Alert shows a message to the user.
	Alert func(msg string)
	// OnRender is called with the new view after every change to it.
	OnRender func(View)
	Logger   *log.Logger
}

// Board is one client session over the item service.
type Board struct {
	svc      Service
	alert    func(string)
	onRender func(View)
	logger   *log.Logger

	mu    sync.Mutex
	items []domain.Item
	view  View
	form  Form
	seq   uint64 // bumped on every view change

	renderMu sync.Mutex
	rendered uint64
}

// New creates a Board with an empty snapshot. Call Refresh to load it.
func New(svc Service, opts Options) *Board {
	if svc == nil {
		panic("board.New: service is nil")
	}
	b := &Board{
		svc:      svc,
		alert:    opts.Alert,
		onRender: opts.OnRender,
		logger:   opts.Logger,
		view:     Render(nil),
	}
	if b.logger == nil {
		b.logger = log.StandardLogger()
	}
	return b
}

// Items returns a copy of the current snapshot.
func (b *Board) Items() []domain.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Item(nil), b.items...)
}

// View returns the currently rendered presentations.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// Refresh fetches the full item list and re-renders both presentations from
// it. On failure the previous snapshot stays in place. Refreshes are neither
// serialised nor cancelled; whichever completes last is what is shown.
func (b *Board) Refresh(ctx context.Context) error {
	items, err := b.svc.ListItems(ctx)
	if err != nil {
		b.logger.WithError(err).Error("Error loading items")
		return err
	}
	view := Render(items)

	b.mu.Lock()
	b.items = items
	b.view = view
	seq := b.commit()
	b.mu.Unlock()

	b.render(seq, view)
	return nil
}

// OpenForm shows the entry form, keeping whatever it already holds.
func (b *Board) OpenForm() {
	b.mu.Lock()
	b.form.Open = true
	b.mu.Unlock()
}

// CloseForm hides the entry form without clearing it.
func (b *Board) CloseForm() {
	b.mu.Lock()
	b.form.Open = false
	b.mu.Unlock()
}

// SetFormFields replaces the contents of the entry form.
func (b *Board) SetFormFields(fields domain.NewItem) {
	b.mu.Lock()
	b.form.Fields = fields
	b.mu.Unlock()
}

func (b *Board) Form() Form {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form
}

// SubmitForm creates an item from the entry form.
func (b *Board) SubmitForm(ctx context.Context) error {
	return b.CreateItem(ctx, b.Form().Fields)
}

// CreateItem submits a new item. On success the form is closed and reset and
// the board refreshed; on failure the user is alerted and the form is left as
// it was.
func (b *Board) CreateItem(ctx context.Context, fields domain.NewItem) error {
	if err := b.svc.CreateItem(ctx, fields); err != nil {
		b.logger.WithError(err).WithField("project", fields.Project).Error("Error adding item")
		if b.alert != nil {
			b.alert(CreateFailedMessage)
		}
		return err
	}

	b.mu.Lock()
	b.form = Form{}
	b.mu.Unlock()

	_ = b.Refresh(ctx)
	return nil
}

// MoveItem changes an item's progress optimistically. The card moves to the
// target column right away; the change is then sent to the service and the
// board refreshed either way, so a rejected move snaps back to the
// authoritative column. The returned error is the write error, if any; it is
// not shown to the user. A progress outside the four columns is refused with
// domain.ErrUnknownProgress before anything moves.
func (b *Board) MoveItem(ctx context.Context, id int, progress domain.Progress) error {
	progress, err := domain.ParseProgress(string(progress))
	if err != nil {
		return err
	}
	b.mu.Lock()
	kanban, ok := b.view.Kanban.moveCard(id, progress)
	var seq uint64
	if ok {
		b.view.Kanban = kanban
		seq = b.commit()
	}
	view := b.view
	b.mu.Unlock()
	if !ok {
		return ErrUnknownItem
	}
	b.render(seq, view)

	err = b.svc.UpdateProgress(ctx, id, progress)
	if err != nil {
		b.logger.WithError(err).WithField("id", id).Error("Error updating progress")
	}
	_ = b.Refresh(ctx)
	return err
}

// Poll refreshes the board every interval until ctx is done. A tick never
// waits for an earlier refresh and failures do not change the cadence.
func (b *Board) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = b.Refresh(ctx)
			}()
		}
	}
}

// commit numbers a view change. Callers hold b.mu.
func (b *Board) commit() uint64 {
	b.seq++
	return b.seq
}

// render shows v unless a later view has already been shown, so overlapping
// refreshes never leave an older snapshot on screen.
func (b *Board) render(seq uint64, v View) {
	if b.onRender == nil {
		return
	}
	b.renderMu.Lock()
	defer b.renderMu.Unlock()
	if seq <= b.rendered {
		return
	}
	b.rendered = seq
	b.onRender(v)
}

// Drag is a single drag-and-drop interaction. It holds the dragged item until
// it is dropped or cancelled.
type Drag struct {
	board  *Board
	itemID int

	mu    sync.Mutex
	ended bool
}

// StartDrag begins dragging the card of item id.
func (b *Board) StartDrag(id int) (*Drag, error) {
	if _, ok := b.View().Kanban.Locate(id); !ok {
		return nil, ErrUnknownItem
	}
	return &Drag{board: b, itemID: id}, nil
}

func (d *Drag) ItemID() int { return d.itemID }

// Drop ends the drag over the column for progress and moves the item there.
func (d *Drag) Drop(ctx context.Context, progress domain.Progress) error {
	if !d.end() {
		return ErrDragEnded
	}
	return d.board.MoveItem(ctx, d.itemID, progress)
}

// Cancel ends the drag without moving anything.
func (d *Drag) Cancel() {
	d.end()
}

func (d *Drag) end() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ended {
		return false
	}
	d.ended = true
	return true
}
