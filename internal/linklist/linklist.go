// Package linklist owns the in-memory collection of the user's links and
// keeps it consistent with server state across load, create, and delete.
// Deletes are optimistic: the entry disappears before the server confirms
// and is fully restored on failure. At all observable times the list is
// either the last-known-good server state or a single well-defined
// optimistic delta from it.
package linklist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
	"github.com/vadimbarashkov/url-shortener-client/internal/session"
)

// Gateway defines the backend operations the list controller depends on.
type Gateway interface {
	ListLinks(ctx context.Context, token string) ([]entity.Link, error)
	CreateLink(ctx context.Context, token, originalURL, customAlias string) (*entity.Link, error)
	DeleteLink(ctx context.Context, token string, id int64) error
}

// Session is the slice of the session controller the list depends on.
type Session interface {
	Status() session.Status
	Credential() string
	Invalidate(ctx context.Context)
}

// FlagStore purges transient UI flags for deleted links.
type FlagStore interface {
	Clear(key string)
}

// pendingOperation records one in-flight optimistic delete: the pre-mutation
// snapshot, the removed entry, and the list generation right after the
// optimistic removal. A still-matching generation at completion means the
// list is exactly the snapshot minus the removed entry.
type pendingOperation struct {
	snapshot []entity.Link
	removed  entity.Link
	gen      uint64
}

type Controller struct {
	gw      Gateway
	session Session
	flags   FlagStore

	mu    sync.Mutex
	links []entity.Link
	// gen increments on every mutation of links, so snapshot staleness is
	// a single comparison.
	gen     uint64
	pending map[int64]pendingOperation
}

// New creates a list controller. The caller is expected to register Reset
// with the session controller's invalidation signal.
func New(gw Gateway, sess Session, flags FlagStore) *Controller {
	return &Controller{
		gw:      gw,
		session: sess,
		flags:   flags,
		pending: make(map[int64]pendingOperation),
	}
}

// FlagKey is the transient-flag key for a link id.
func FlagKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Links returns a copy of the current list, in server response order.
func (c *Controller) Links() []entity.Link {
	c.mu.Lock()
	defer c.mu.Unlock()

	links := make([]entity.Link, len(c.links))
	copy(links, c.links)
	return links
}

// Reset discards the list. Wired to the session's invalidation signal:
// authenticated-only data must not survive the session.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = nil
	c.gen++
}

// Load replaces the list with the server's collection. Valid only while
// authenticated. A backend-reported credential failure invalidates the
// session; any other failure leaves the previous list unchanged.
func (c *Controller) Load(ctx context.Context) error {
	const op = "linklist.Controller.Load"

	if c.session.Status() != session.StatusAuthenticated {
		return fmt.Errorf("%s: %w", op, entity.ErrSessionInvalid)
	}

	links, err := c.gw.ListLinks(ctx, c.session.Credential())
	if err != nil {
		if errors.Is(err, entity.ErrSessionInvalid) {
			c.session.Invalidate(ctx)
		}

		return fmt.Errorf("%s: failed to load links: %w", op, err)
	}

	c.mu.Lock()
	c.links = links
	c.gen++
	c.mu.Unlock()

	return nil
}

// Create shortens a URL. There is nothing to predict client-side, so the
// list is not mutated until the server responds. When authenticated the new
// link is appended; an anonymous result is returned to the caller exactly
// once and never enters the list.
func (c *Controller) Create(ctx context.Context, originalURL, customAlias string) (*entity.Link, error) {
	const op = "linklist.Controller.Create"

	token := c.session.Credential()

	link, err := c.gw.CreateLink(ctx, token, originalURL, customAlias)
	if err != nil {
		if errors.Is(err, entity.ErrSessionInvalid) {
			c.session.Invalidate(ctx)
		}

		return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
	}

	// Append only links the server associated with the user: the create must
	// have run with the credential and the session must still hold it. A
	// login landing mid-create does not adopt an anonymous result.
	if token != "" && c.session.Status() == session.StatusAuthenticated {
		c.mu.Lock()
		c.upsertLocked(*link)
		c.mu.Unlock()
	}

	return link, nil
}

// Delete removes a link optimistically. An id not in the current list is a
// no-op with no network call. A second delete for an id already in flight is
// rejected with entity.ErrDeletePending. On failure the removal is fully
// reverted; a backend "not found" counts as already resolved. Successful or
// resolved deletion purges the link's transient flag.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	const op = "linklist.Controller.Delete"

	c.mu.Lock()

	if _, inFlight := c.pending[id]; inFlight {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, entity.ErrDeletePending)
	}

	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}

	pending := pendingOperation{
		snapshot: make([]entity.Link, len(c.links)),
		removed:  c.links[idx],
	}
	copy(pending.snapshot, c.links)

	c.links = append(c.links[:idx], c.links[idx+1:]...)
	c.gen++
	pending.gen = c.gen
	c.pending[id] = pending
	c.mu.Unlock()

	err := c.gw.DeleteLink(ctx, c.session.Credential(), id)

	c.mu.Lock()
	delete(c.pending, id)

	switch {
	case err == nil, errors.Is(err, entity.ErrLinkNotFound):
		// A missing target was already resolved server-side. A reload or a
		// rollback racing the delete may have brought the entry back; drop
		// it again.
		c.removeLocked(id)
		c.mu.Unlock()

		c.flags.Clear(FlagKey(id))
		return nil

	case errors.Is(err, entity.ErrSessionInvalid):
		c.rollbackLocked(pending, id)
		c.mu.Unlock()

		// Roll back first, then invalidate; invalidation clears the list.
		c.session.Invalidate(ctx)
		return fmt.Errorf("%s: failed to delete link: %w", op, err)

	default:
		c.rollbackLocked(pending, id)
		c.mu.Unlock()
		return fmt.Errorf("%s: failed to delete link: %w", op, err)
	}
}

// upsertLocked appends a link, replacing any entry with the same id so the
// list never holds duplicate ids.
func (c *Controller) upsertLocked(link entity.Link) {
	if idx := c.indexLocked(link.ID); idx >= 0 {
		c.links[idx] = link
		c.gen++
		return
	}
	c.links = append(c.links, link)
	c.gen++
}

func (c *Controller) indexLocked(id int64) int {
	for i := range c.links {
		if c.links[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) removeLocked(id int64) {
	if idx := c.indexLocked(id); idx >= 0 {
		c.links = append(c.links[:idx], c.links[idx+1:]...)
		c.gen++
	}
}

// rollbackLocked reverts an optimistic removal. If nothing else mutated the
// list since the removal, the pre-mutation snapshot is restored exactly.
// Otherwise only the removed entry is reinserted: the stale snapshot also
// predates whatever else happened (a reload, a reset, another delete, a
// create) and must not overwrite it.
func (c *Controller) rollbackLocked(pending pendingOperation, id int64) {
	if c.gen == pending.gen {
		c.links = pending.snapshot
		c.gen++
		return
	}

	// Never resurrect authenticated data after the session went away.
	if c.session.Status() != session.StatusAuthenticated {
		return
	}

	if c.indexLocked(id) < 0 {
		c.links = append(c.links, pending.removed)
		c.gen++
	}
}
