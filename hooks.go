package nc2ldap

import (
	"sync"

	"github.com/agentstation/nc2ldap/pkg/contact"
)

// Hook function types for directory writes.
type (
	// ContactAddedHook is called after a contact was written to the directory
	ContactAddedHook func(c contact.Contact)

	// ContactRemovedHook is called after a contact was deleted from the directory
	ContactRemovedHook func(c contact.Contact)
)

// Hooks registers callbacks. They run synchronously on the syncing goroutine.
type Hooks interface {
	OnContactAdded(fn ContactAddedHook)
	OnContactRemoved(fn ContactRemovedHook)
}

type hooks struct {
	mu        sync.RWMutex
	onAdded   []ContactAddedHook
	onRemoved []ContactRemovedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) added(c contact.Contact) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onAdded {
		fn(c)
	}
}

func (h *hooks) removed(c contact.Contact) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRemoved {
		fn(c)
	}
}

// OnContactAdded registers a callback for written contacts.
func (c *client) OnContactAdded(fn ContactAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onAdded = append(c.hooks.onAdded, fn)
}

// OnContactRemoved registers a callback for deleted contacts.
func (c *client) OnContactRemoved(fn ContactRemovedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRemoved = append(c.hooks.onRemoved, fn)
}
