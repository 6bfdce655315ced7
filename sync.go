package nc2ldap

import (
	"context"
	"time"

	"github.com/agentstation/nc2ldap/internal/metrics"
	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/logging"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
	pkgsync "github.com/agentstation/nc2ldap/pkg/sync"
)

// Result is the outcome of one sync cycle.
type Result = pkgsync.Result

// SyncOption configures one sync cycle.
type SyncOption = pkgsync.Option

// Sync options.
var (
	WithDryRun   = pkgsync.WithDryRun
	WithStrategy = pkgsync.WithStrategy
	WithTimeout  = pkgsync.WithTimeout
)

// Syncer runs sync cycles.
type Syncer interface {
	// Sync runs one cycle. It fails with errors.ErrSyncInProgress while
	// another cycle runs.
	Sync(ctx context.Context, opts ...SyncOption) (*Result, error)
}

// plan is one reconciliation with the sizes of both sides.
type plan struct {
	changeset      *reconcile.Changeset
	sourceCount    int
	directoryCount int
}

// Plan fetches both sides and reconciles them without writing.
func (c *client) Plan(ctx context.Context) (*reconcile.Changeset, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithOperation(logging.WithLogger(ctx, c.options.logger), "plan")

	p, err := c.plan(ctx)
	if err != nil {
		return nil, err
	}
	return p.changeset, nil
}

func (c *client) plan(ctx context.Context) (*plan, error) {
	log := logging.FromContext(ctx)

	cards, err := c.source.Cards(ctx)
	if err != nil {
		return nil, errors.NewSyncError("fetch", errors.WrapContext("fetch", err))
	}
	source := c.cards.DecodeAll(cards)
	log.Debug().Int("cards", len(cards)).Int("contacts", len(source)).Msg("decoded address book")

	entries, err := c.directory.Entries(ctx)
	if err != nil {
		return nil, errors.NewSyncError("list", errors.WrapContext("list", err))
	}
	current := c.entries.DecodeAll(entries)
	log.Debug().Int("entries", len(entries)).Int("contacts", len(current)).Msg("decoded phone book")

	return &plan{
		changeset:      reconcile.Reconcile(source, current),
		sourceCount:    len(source),
		directoryCount: len(current),
	}, nil
}

// Sync plans a cycle and applies its deletes, then its adds. A failed
// operation is logged and counted but never stops the others.
func (c *client) Sync(ctx context.Context, opts ...SyncOption) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	started := time.Now()
	if !c.running.CompareAndSwap(false, true) {
		c.options.metrics.ObserveSync(metrics.OutcomeSkipped, started)
		return nil, errors.ErrSyncInProgress
	}
	defer c.running.Store(false)

	options := pkgsync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	ctx = logging.WithOperation(logging.WithLogger(ctx, c.options.logger), "sync")
	log := logging.FromContext(ctx)

	p, err := c.plan(ctx)
	if err != nil {
		switch {
		case errors.IsCanceled(err):
			log.Warn().Err(err).Msg("Sync canceled")
		case errors.IsTimeout(err):
			log.Error().Err(err).Dur("timeout", options.Timeout).Msg("Sync timed out")
		default:
			log.Error().Err(err).Msg("Sync failed")
		}
		c.options.metrics.ObserveSync(metrics.OutcomeFailure, started)
		c.record(nil, err)
		return nil, err
	}
	c.options.metrics.ObserveSizes(p.sourceCount, p.directoryCount)

	planned := p.changeset.Filter(options.Strategy)
	result := pkgsync.NewResult(planned, p.changeset, p.sourceCount, p.directoryCount, options.DryRun)

	if planned.HasChanges() {
		log.Info().
			Int("added", planned.Summary.Added).
			Int("removed", planned.Summary.Removed).
			Int("unchanged", planned.Summary.Unchanged).
			Msg("Changes detected")
	}
	if result.Skipped > 0 {
		log.Info().Int("skipped", result.Skipped).Str("strategy", string(options.Strategy)).Msg("Removals withheld")
	}

	if options.DryRun {
		log.Info().Bool("dry_run", true).Msg("Dry run completed - no changes applied")
	} else {
		c.apply(ctx, planned, result)
	}

	result.Duration = time.Since(started)

	outcome := metrics.OutcomeSuccess
	if result.Failed > 0 {
		outcome = metrics.OutcomePartial
	}
	c.options.metrics.ObserveSync(outcome, started)
	c.record(result, result.Errors)

	log.Info().
		Int("source", result.SourceCount).
		Int("directory", result.DirectoryCount).
		Int("added", len(result.Added)).
		Int("removed", len(result.Removed)).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Sync completed")

	return result, nil
}

// apply writes the changeset, deletes first so a replaced contact never
// exists twice under the same name.
func (c *client) apply(ctx context.Context, cs *reconcile.Changeset, result *Result) {
	var errs []error

	for _, ct := range cs.Removed {
		if err := c.write(ctx, metrics.OperationDelete, ct, c.directory.Delete); err != nil {
			errs = append(errs, err)
			result.Failed++
			continue
		}
		result.Removed = append(result.Removed, ct)
		c.options.metrics.Removed()
		c.hooks.removed(ct)
	}

	for _, ct := range cs.Added {
		if err := c.write(ctx, metrics.OperationAdd, ct, c.directory.Add); err != nil {
			errs = append(errs, err)
			result.Failed++
			continue
		}
		result.Added = append(result.Added, ct)
		c.options.metrics.Added()
		c.hooks.added(ct)
	}

	result.Errors = errors.Join(errs...)
}

func (c *client) write(ctx context.Context, operation string, ct contact.Contact, fn func(context.Context, contact.Contact) error) error {
	ctx = logging.WithContact(ctx, ct.DisplayName())

	err := errors.WrapContext(operation, ctx.Err())
	if err == nil {
		err = fn(ctx, ct)
	}
	if err != nil {
		c.options.metrics.Failed(operation)
		logging.FromContext(logging.WithError(ctx, err)).Error().
			Str("change", operation).
			Msg("Directory operation failed")
		return err
	}
	logging.FromContext(ctx).Debug().Str("change", operation).Msg("Directory updated")
	return nil
}
