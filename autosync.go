package nc2ldap

import (
	"context"
	"time"

	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/errors"
)

// AutoSyncer provides controls for scheduled sync cycles.
type AutoSyncer interface {
	// AutoSyncOn runs a cycle every configured interval until AutoSyncOff.
	AutoSyncOn() error

	// AutoSyncOff stops scheduled cycles and waits for a running one to end.
	AutoSyncOff() error
}

// AutoSyncOn starts the schedule, replacing a running one.
func (c *client) AutoSyncOn() error {
	interval := c.options.autoSyncInterval
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "autoSyncInterval",
			Value:   interval,
			Message: "sync interval must be positive",
		}
	}

	if err := c.AutoSyncOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.autoCancel = cancel
	c.autoDone = done

	go c.autoSync(ctx, interval, done)

	c.options.logger.Info().Dur("interval", interval).Msg("Auto-sync enabled")
	return nil
}

func (c *client) autoSync(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cycleCtx, cancel := context.WithTimeout(ctx, constants.SyncTimeout)
			_, err := c.Sync(cycleCtx)
			cancel()

			switch {
			case err == nil:
			case errors.IsSyncInProgress(err):
				c.options.logger.Warn().Msg("Skipping scheduled sync, previous cycle still running")
			case ctx.Err() != nil:
				return
			default:
				// Already logged by Sync; the next tick retries.
			}
		case <-ctx.Done():
			return
		}
	}
}

// AutoSyncOff stops the schedule. Calling it when auto-sync is off is a no-op.
func (c *client) AutoSyncOff() error {
	c.autoMu.Lock()
	cancel, done := c.autoCancel, c.autoDone
	c.autoCancel, c.autoDone = nil, nil
	c.autoMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	c.options.logger.Info().Msg("Auto-sync disabled")
	return nil
}
