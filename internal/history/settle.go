package history

import (
	"context"
	"time"

	"github.com/hazyhaar/softnav/page"
)

// WatchScroll snapshots scroll offsets into the current entry once
// scrolling has settled. There is no reliable "about to navigate away"
// signal before a back/forward traversal, so the position is captured
// continuously: the offsets are polled at a fixed short interval and two
// consecutive identical samples count as settled. Runs until ctx is done.
func (c *Coordinator) WatchScroll(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.SettleInterval)
	defer ticker.Stop()

	var last page.Offset
	var lastRecorded page.Offset
	primed := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := c.pg.Scroll()
			if primed && cur == last && cur != lastRecorded {
				c.RecordPosition(ctx)
				lastRecorded = cur
			}
			last = cur
			primed = true
		}
	}
}
