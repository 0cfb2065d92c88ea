package api

import (
	"context"

	"workboard/domain"
	"workboard/notify"
)

// Storage abstracts the item store for handlers.
type Storage interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	AppendItem(ctx context.Context, in domain.NewItem) error
	UpdateProgress(ctx context.Context, id int, progress domain.Progress) error
}

// Subscriber hands out change feeds to stream clients.
type Subscriber interface {
	Subscribe() chan notify.Change
	Unsubscribe(ch chan notify.Change)
}
