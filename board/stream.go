package board

import (
	"bufio"
	"context"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"workboard/notify"
)

// StreamChanges reads the service's change stream, calling fn for every
// change, until ctx ends or the stream drops.
func (c *Client) StreamChanges(ctx context.Context, fn func(notify.Change)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var ch notify.Change
		if err := sonic.UnmarshalString(strings.TrimSpace(strings.TrimPrefix(line, "data:")), &ch); err != nil {
			continue
		}
		fn(ch)
	}
	if ctx.Err() != nil {
		return nil
	}
	return scanner.Err()
}

// ChangeSource delivers change notifications.
type ChangeSource interface {
	StreamChanges(ctx context.Context, fn func(notify.Change)) error
}

// Follow refreshes the board whenever src reports a change. It complements
// Poll and does not replace it: when the stream ends Follow returns and the
// board converges through polling alone.
func (b *Board) Follow(ctx context.Context, src ChangeSource) error {
	return src.StreamChanges(ctx, func(ch notify.Change) {
		b.logger.WithField("kind", ch.Kind).Debug("change notification")
		_ = b.Refresh(ctx)
	})
}
