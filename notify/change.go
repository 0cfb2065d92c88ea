// Package notify fans out item changes to board clients and downstream
// consumers. Notifications are hints that a refresh is worthwhile; clients
// keep polling regardless, so a lost notification only delays convergence.
package notify

import (
	"context"
	"errors"

	"workboard/domain"
)

type Kind string

const (
	ItemCreated     Kind = "item-created"
	ProgressUpdated Kind = "progress-updated"
)

// Change describes a committed write to the item store.
type Change struct {
	Kind     Kind            `json:"kind"`
	ItemID   int             `json:"id,omitempty"`
	Progress domain.Progress `json:"progress,omitempty"`
	Time     int64           `json:"time"`
}

// Publisher delivers changes somewhere.
type Publisher interface {
	Publish(ctx context.Context, ch Change) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ch Change) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
