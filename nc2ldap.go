// Package nc2ldap keeps an LDAP phone book in line with a CardDAV address
// book.
//
// A sync cycle fetches every card from the Source, decodes the cards and the
// Directory entries into canonical contacts, reconciles the two sets and
// applies the resulting deletes and adds to the Directory. Contacts have no
// identity beyond their content, so an edited contact is replaced: the old
// entry is removed and the new one added.
//
// The nc2ldap command wires a Nextcloud address book and an LDAP phone book
// into a Client:
//
//	client, err := nc2ldap.New(addressBook, phoneBook, nc2ldap.WithRegion("DE"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnContactAdded(func(c contact.Contact) {
//	    log.Printf("added %s", c.DisplayName())
//	})
//
//	result, err := client.Sync(ctx, nc2ldap.WithDryRun(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package nc2ldap

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/agentstation/nc2ldap/pkg/card"
	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/directory"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/phone"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
)

// Source provides the cards of the address book.
type Source interface {
	Cards(ctx context.Context) ([]vcard.Card, error)
}

// Directory stores the phone book.
type Directory interface {
	Entries(ctx context.Context) ([]directory.Entry, error)
	Add(ctx context.Context, c contact.Contact) error
	Delete(ctx context.Context, c contact.Contact) error
}

// Planner computes what a sync would change.
type Planner interface {
	// Plan fetches both sides and reconciles them without writing.
	Plan(ctx context.Context) (*reconcile.Changeset, error)
}

// Client synchronizes a Source into a Directory.
type Client interface {
	Planner

	// Syncer runs sync cycles
	Syncer

	// AutoSyncer runs sync cycles on a schedule
	AutoSyncer

	// Hooks registers callbacks for directory writes
	Hooks

	// Status returns the outcome of the most recent cycle
	Status() Status
}

// Status describes the most recent sync cycle.
type Status struct {
	LastSync   time.Time // completion time of the last cycle, successful or not
	LastResult *Result
	LastError  error
	Syncing    bool
}

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

type client struct {
	options   *options
	source    Source
	directory Directory
	cards     *card.Decoder
	entries   *directory.Decoder
	hooks     *hooks

	running atomic.Bool // single-flight guard for Sync

	mu     sync.RWMutex
	status Status

	// auto sync state
	autoMu     sync.Mutex
	autoCancel context.CancelFunc
	autoDone   chan struct{}
}

// New creates a Client that reads src and writes dir.
func New(src Source, dir Directory, opts ...Option) (Client, error) {
	if src == nil {
		return nil, errors.NewValidationError("source", nil, "source is required")
	}
	if dir == nil {
		return nil, errors.NewValidationError("directory", nil, "directory is required")
	}

	o := defaults().apply(opts...)
	if err := phone.ValidRegion(o.region); err != nil {
		return nil, errors.NewConfigError("client", "invalid phone region", err)
	}

	return &client{
		options:   o,
		source:    src,
		directory: dir,
		cards:     card.NewDecoder(o.region, card.WithLogger(o.logger)),
		entries:   directory.NewDecoder(directory.WithRegion(o.region), directory.WithLogger(o.logger)),
		hooks:     newHooks(),
	}, nil
}

// Status returns the outcome of the most recent cycle.
func (c *client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := c.status
	st.Syncing = c.running.Load()
	return st
}

func (c *client) record(result *Result, err error) {
	c.mu.Lock()
	c.status.LastSync = time.Now()
	c.status.LastResult = result
	c.status.LastError = err
	c.mu.Unlock()
}
