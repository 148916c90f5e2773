package docsync

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRefresher = (*client)(nil)

// AutoRefresher provides controls for automatic snapshot refreshes.
type AutoRefresher interface {
	// AutoRefreshOn begins periodic refreshes
	AutoRefreshOn() error

	// AutoRefreshOff stops periodic refreshes
	AutoRefreshOff() error
}

// AutoRefreshOn begins periodic refreshes at the configured interval.
// Calling it again restarts the schedule.
func (c *client) AutoRefreshOn() error {
	interval := c.options.autoRefreshInterval
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRefreshInterval",
			Value:   interval,
			Message: "refresh interval must be positive",
		}
	}

	// Stop any existing schedule to prevent leaking the goroutine
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	ticker := time.NewTicker(interval)
	ctx, cancel := context.WithCancel(c.context(context.Background()))
	c.refreshTicker = ticker
	c.refreshCancel = cancel

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				err := c.Refresh(ctx)
				if err == nil {
					continue
				}
				if stderrors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				// The error state and log line are already recorded by Refresh.
				logging.FromContext(ctx).Debug().Err(err).Msg("Auto refresh failed")
			case <-ctx.Done():
				return
			}
		}
	}()

	logging.FromContext(ctx).Debug().Dur("interval", interval).Msg("Auto refresh started")
	return nil
}

// AutoRefreshOff stops periodic refreshes. It is safe to call repeatedly.
func (c *client) AutoRefreshOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	if c.refreshTicker != nil {
		c.refreshTicker.Stop()
		c.refreshTicker = nil
	}
	if c.refreshCancel != nil {
		c.refreshCancel()
		c.refreshCancel = nil
	}
	return nil
}
