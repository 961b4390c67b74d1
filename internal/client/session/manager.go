package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var ErrInvalidAuthData = errors.New("invalid auth data")

// Manager owns the session state. It is safe for concurrent use.
type Manager struct {
	store    Store
	notifier Notifier

	mu    sync.RWMutex
	state State
}

// NewManager returns a Manager backed by store. notifier may be nil.
//
// The in-memory state starts logged out; IsAuthenticated only reflects the
// persisted flag after Restore.
func NewManager(store Store, notifier Notifier) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
		state:    State{Permissions: EmptyPermissions()},
	}
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	s.Permissions = m.state.Permissions.clone()
	return s
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsAuthenticated
}

// Login stores a freshly received session. Payloads without a user or a
// permission set are rejected with ErrInvalidAuthData and change nothing.
func (m *Manager) Login(ctx context.Context, data AuthData) error {
	if data.User == nil || data.Permissions == nil {
		return ErrInvalidAuthData
	}

	user, err := json.Marshal(data.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	perms, err := json.Marshal(data.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}

	write := func(ctx context.Context, s Store) error {
		if err := s.Set(ctx, KeyUser, user); err != nil {
			return err
		}
		if err := s.Set(ctx, KeyPermissions, perms); err != nil {
			return err
		}
		return s.Set(ctx, KeyIsAuthenticated, []byte("true"))
	}

	if txs, ok := m.store.(TxStore); ok {
		err = txs.WithTx(ctx, write)
	} else {
		err = write(ctx, m.store)
	}
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	m.loggedIn(*data.User, *data.Permissions)
	return nil
}

// Restore rehydrates the session from the store. It reports whether a
// session was found; user and permissions must both be present. A missing
// authenticated flag is written back.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	rawUser, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	rawPerms, err := m.store.Get(ctx, KeyPermissions)
	if err != nil {
		return false, fmt.Errorf("load permissions: %w", err)
	}
	if isJSONEmpty(rawUser) || isJSONEmpty(rawPerms) {
		return false, nil
	}

	var user User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return false, fmt.Errorf("decode user: %w", err)
	}
	var perms PermissionSet
	if err := json.Unmarshal(rawPerms, &perms); err != nil {
		return false, fmt.Errorf("decode permissions: %w", err)
	}

	flag, err := m.store.Get(ctx, KeyIsAuthenticated)
	if err != nil {
		return false, fmt.Errorf("load authenticated flag: %w", err)
	}
	var authenticated bool
	_ = json.Unmarshal(flag, &authenticated)
	if !authenticated {
		if err := m.store.Set(ctx, KeyIsAuthenticated, []byte("true")); err != nil {
			return false, fmt.Errorf("persist authenticated flag: %w", err)
		}
	}

	m.loggedIn(user, perms)
	return true, nil
}

// Clear logs the session out: the persisted keys are removed and the
// in-memory state is reset. Memory and the notifier are updated even when
// the store fails; store errors are returned joined.
func (m *Manager) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyUser, KeyPermissions, KeyIsAuthenticated} {
		if err := m.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	m.mu.Lock()
	m.state = State{Permissions: EmptyPermissions()}
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.LoggedOut()
	}

	return errors.Join(errs...)
}

func (m *Manager) loggedIn(user User, perms PermissionSet) {
	perms = normalize(perms)

	m.mu.Lock()
	m.state = State{IsAuthenticated: true, User: &user, Permissions: perms}
	snapshot := State{IsAuthenticated: true, User: &user, Permissions: perms.clone()}
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.LoggedIn(snapshot)
	}
}

func normalize(p PermissionSet) PermissionSet {
	if p.MenuItems == nil {
		p.MenuItems = []string{}
	}
	if p.APIs == nil {
		p.APIs = []string{}
	}
	if p.Buttons == nil {
		p.Buttons = []string{}
	}
	return p
}

func isJSONEmpty(b []byte) bool {
	return len(b) == 0 || string(b) == "null"
}
