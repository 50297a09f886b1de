package application

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/internal/domain/entity"
)

// SessionWatcher keeps an in-process copy of the session record and reloads
// it whenever the store reports a change to the roster or session key.
// While Live, the copy tracks every committed change and can be served
// instead of reading the store.
type SessionWatcher struct {
	auth   *AuthService
	logger *logrus.Logger

	// refreshMu serializes reloads so a slow read never overwrites a newer one.
	refreshMu sync.Mutex
	live      atomic.Bool

	mu       sync.RWMutex
	state    entity.AuthState
	onChange func(entity.AuthState)
}

func NewSessionWatcher(auth *AuthService, logger *logrus.Logger) *SessionWatcher {
	return &SessionWatcher{
		auth:   auth,
		logger: logger,
		state:  entity.AuthState{Users: []entity.User{}},
	}
}

// OnChange registers fn to run after every refresh. Set it before Run.
func (w *SessionWatcher) OnChange(fn func(entity.AuthState)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Run loads the state once, then follows store notifications until ctx ends.
func (w *SessionWatcher) Run(ctx context.Context) error {
	changes, err := w.auth.Store.Subscribe(ctx)
	if err != nil {
		return err
	}
	w.Refresh(ctx)
	w.live.Store(true)
	defer w.live.Store(false)

	watched := map[string]bool{w.auth.UsersKey(): true, w.auth.AuthKey(): true}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-changes:
			if !ok {
				return ctx.Err()
			}
			if watched[key] {
				w.Refresh(ctx)
			}
		}
	}
}

// Refresh reloads the session record from the store.
func (w *SessionWatcher) Refresh(ctx context.Context) {
	w.refreshMu.Lock()
	defer w.refreshMu.Unlock()

	state := w.auth.State(ctx)

	w.mu.Lock()
	w.state = state
	fn := w.onChange
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.WithField("authenticated", state.Authenticated()).Debug("session refreshed")
	}
	if fn != nil {
		fn(state)
	}
}

// Live reports whether Run is following store notifications.
func (w *SessionWatcher) Live() bool { return w.live.Load() }

// Snapshot returns the last loaded state.
func (w *SessionWatcher) Snapshot() entity.AuthState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}
