// Package session owns the authentication state of the client. It bootstraps
// from the credential store, verifies credentials against the backend, and
// notifies dependents when the session is invalidated.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
)

// Status is the authentication state of the session.
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusPending       Status = "pending"
	StatusAuthenticated Status = "authenticated"
	StatusInvalid       Status = "invalid"
)

// CredentialStore defines durable persistence for the auth credential.
// The session controller is the only writer.
type CredentialStore interface {
	// Credential returns the stored credential or entity.ErrCredentialNotFound.
	Credential(ctx context.Context) (string, error)
	// Save persists the credential, replacing any previous one.
	Save(ctx context.Context, credential string) error
	// Clear removes the stored credential. Idempotent.
	Clear(ctx context.Context) error
}

// Verifier checks a credential against the backend.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.UserProfile, error)
}

// Controller is the session state machine. Verification failures are never
// returned as errors; they are expressed as the resulting status. Returned
// errors concern credential-store I/O only.
type Controller struct {
	store    CredentialStore
	verifier Verifier

	mu            sync.Mutex
	status        Status
	credential    string
	user          *entity.UserProfile
	verifySeq     uint64
	onInvalidated []func()
}

func New(store CredentialStore, verifier Verifier) *Controller {
	return &Controller{
		store:    store,
		verifier: verifier,
		status:   StatusAnonymous,
	}
}

// OnInvalidated registers a callback fired whenever the session stops being
// usable for authenticated operations: on every transition into Invalid and
// on logout from Authenticated. Dependents must discard authenticated-only
// data when notified. Callbacks run outside the controller's lock.
func (c *Controller) OnInvalidated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInvalidated = append(c.onInvalidated, fn)
}

// Status returns the current session status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// User returns the authenticated user's profile, nil unless Authenticated.
func (c *Controller) User() *entity.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Credential returns the verified credential, empty unless Authenticated.
func (c *Controller) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusAuthenticated {
		return ""
	}
	return c.credential
}

// Bootstrap initializes the session from the credential store. With no stored
// credential the session is Anonymous; otherwise the credential is verified
// and the session ends up Authenticated or Invalid.
func (c *Controller) Bootstrap(ctx context.Context) error {
	const op = "session.Controller.Bootstrap"

	credential, err := c.store.Credential(ctx)
	if err != nil {
		if errors.Is(err, entity.ErrCredentialNotFound) {
			c.mu.Lock()
			c.status = StatusAnonymous
			c.mu.Unlock()
			return nil
		}

		return fmt.Errorf("%s: failed to read credential: %w", op, err)
	}

	c.verify(ctx, credential)
	return nil
}

// Login persists the credential and verifies it. A new Login supersedes any
// in-flight verification; the stale response is discarded. The returned
// status is Authenticated or Invalid unless this call was itself superseded.
func (c *Controller) Login(ctx context.Context, credential string) (Status, error) {
	const op = "session.Controller.Login"

	if err := c.store.Save(ctx, credential); err != nil {
		return c.Status(), fmt.Errorf("%s: failed to persist credential: %w", op, err)
	}

	return c.verify(ctx, credential), nil
}

// Logout clears the credential store and returns the session to Anonymous.
// Local state is reset regardless of store errors.
func (c *Controller) Logout(ctx context.Context) error {
	const op = "session.Controller.Logout"

	c.mu.Lock()
	c.verifySeq++
	wasAuthenticated := c.status == StatusAuthenticated
	c.status = StatusAnonymous
	c.credential = ""
	c.user = nil
	err := c.store.Clear(ctx)

	var callbacks []func()
	if wasAuthenticated {
		callbacks = append(callbacks, c.onInvalidated...)
	}
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}

	if err != nil {
		return fmt.Errorf("%s: failed to clear credential: %w", op, err)
	}

	return nil
}

// Invalidate forces the session into Invalid and purges the stored
// credential. List operations call it when the backend reports the
// credential expired.
func (c *Controller) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.verifySeq++
	c.toInvalidLocked(ctx)
	callbacks := append([]func(){}, c.onInvalidated...)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// verify runs one verification attempt tagged with a sequence number.
// A response whose sequence number is no longer the latest issued is ignored.
func (c *Controller) verify(ctx context.Context, credential string) Status {
	c.mu.Lock()
	c.status = StatusPending
	c.credential = credential
	c.user = nil
	c.verifySeq++
	seq := c.verifySeq
	c.mu.Unlock()

	user, err := c.verifier.VerifyToken(ctx, credential)

	c.mu.Lock()
	if seq != c.verifySeq {
		// Superseded by a newer login or bootstrap.
		status := c.status
		c.mu.Unlock()
		return status
	}

	if err != nil {
		c.toInvalidLocked(ctx)
		callbacks := append([]func(){}, c.onInvalidated...)
		c.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
		return StatusInvalid
	}

	c.status = StatusAuthenticated
	c.user = user
	c.mu.Unlock()
	return StatusAuthenticated
}

// toInvalidLocked resets session state to Invalid and purges the store.
// The store purge is best effort: the invalid state must win even if
// persistence fails. Callers must hold c.mu.
func (c *Controller) toInvalidLocked(ctx context.Context) {
	c.status = StatusInvalid
	c.credential = ""
	c.user = nil
	_ = c.store.Clear(ctx)
}
