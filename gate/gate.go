// Package gate admits the user once an access key is stored and the
// backend has accepted it.
//
// Verification failures are not told apart: an unreachable backend and
// a wrong key both reject and clear the stored key. The cause is kept
// on the returned error for logging only.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rustyeddy/traderdash/internal/logger"
)

type State int

const (
	LoggedOut State = iota
	Verifying
	LoggedIn
	Rejected
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged out"
	case Verifying:
		return "verifying"
	case LoggedIn:
		return "logged in"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

var (
	ErrLoginFailed = errors.New("login failed")
	ErrNoKey       = errors.New("no access key")
	ErrLoggedOut   = errors.New("not logged in")
)

// Verifier makes one request that only a valid key can satisfy.
type Verifier interface {
	VerifyCredential(ctx context.Context) error
}

type VerifierFunc func(ctx context.Context) error

func (f VerifierFunc) VerifyCredential(ctx context.Context) error { return f(ctx) }

// Gate tracks login state around a Store.
type Gate struct {
	store  Store
	verify Verifier

	mu    sync.Mutex
	state State
}

// New builds a gate. A key already in the store means LoggedIn; it is
// not re-verified.
func New(store Store, verify Verifier) (*Gate, error) {
	g := &Gate{store: store, verify: verify, state: LoggedOut}
	_, ok, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		g.state = LoggedIn
	}
	return g, nil
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) setState(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}

// Credential returns the stored key. The backend client reads it on
// every request.
func (g *Gate) Credential() (string, bool) { return Credential(g.store) }

// Credential reads the key from s, treating a read error as no key.
func Credential(s Store) (string, bool) {
	key, ok, err := s.Load()
	if err != nil {
		logger.L.Warn("credential unreadable", "err", err)
		return "", false
	}
	return key, ok
}

// Submit stores key before verifying it, then verifies with a single
// request. Any failure clears the key and leaves the gate Rejected.
func (g *Gate) Submit(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: %w", ErrLoginFailed, ErrNoKey)
	}
	if err := g.store.Save(key); err != nil {
		return err
	}
	g.setState(Verifying)

	if err := g.verify.VerifyCredential(ctx); err != nil {
		if cerr := g.store.Clear(); cerr != nil {
			logger.L.Error("clearing rejected credential", "err", cerr)
		}
		g.setState(Rejected)
		logger.L.Warn("login rejected", "cause", err)
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	g.setState(LoggedIn)
	logger.L.Info("login accepted")
	return nil
}

// Logout clears the stored key.
func (g *Gate) Logout() error {
	if err := g.store.Clear(); err != nil {
		return err
	}
	g.setState(LoggedOut)
	return nil
}

// Require returns ErrLoggedOut unless the gate admits.
func (g *Gate) Require() error {
	if g.State() != LoggedIn {
		return ErrLoggedOut
	}
	return nil
}
