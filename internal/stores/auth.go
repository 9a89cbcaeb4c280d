package stores

import (
	"context"
	"errors"
	"sync"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/status"
	"go.uber.org/zap"
)

// AuthStore tracks the signed-in user.
type AuthStore struct {
	auth    docstore.Auth
	backend docstore.Backend
	machine *status.Machine
	bus     *bus.Bus
	logger  *zap.Logger
	op      loading

	mu          sync.RWMutex
	user        *User
	initialized bool
	stop        func()
}

func NewAuthStore(auth docstore.Auth, backend docstore.Backend, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *AuthStore {
	return &AuthStore{
		auth:    auth,
		backend: backend,
		machine: machine,
		bus:     b,
		logger:  logger,
	}
}

// Initialize starts listening for auth state changes. The listener fires
// right away, so Loading is false once Initialize returns. The returned
// func stops listening.
func (s *AuthStore) Initialize(ctx context.Context) func() {
	s.mu.Lock()
	if s.stop != nil {
		stop := s.stop
		s.mu.Unlock()
		return stop
	}
	s.mu.Unlock()

	stop := s.auth.OnAuthStateChanged(func(u *docstore.AuthUser) {
		s.onAuthState(ctx, u)
	})
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
	return stop
}

func (s *AuthStore) onAuthState(ctx context.Context, u *docstore.AuthUser) {
	var user *User
	if u != nil {
		user = s.profile(ctx, u)
	}

	s.mu.Lock()
	s.user = user
	s.initialized = true
	s.mu.Unlock()

	to := status.SignedOut
	if user != nil {
		to = status.SignedIn
	}
	if err := s.machine.Settle(to); err != nil {
		s.logger.Warn("auth state transition failed", zap.Error(err))
	}
	s.bus.Emit(bus.KindStoreAuth, Change{})
}

// profile reads users/{uid} and falls back to the provider's data.
func (s *AuthStore) profile(ctx context.Context, u *docstore.AuthUser) *User {
	fallback := &User{ID: u.UID, Email: u.Email, Username: u.DisplayName}
	doc, err := s.backend.Get(ctx, CollectionUsers, u.UID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			s.logger.Warn("load profile failed", zap.String("uid", u.UID), zap.Error(err))
		}
		return fallback
	}
	p, err := decode[User](*doc)
	if err != nil {
		s.logger.Warn("invalid profile", zap.String("uid", u.UID), zap.Error(err))
		return fallback
	}
	if p.Email == "" {
		p.Email = u.Email
	}
	if p.Username == "" {
		p.Username = u.DisplayName
	}
	return &p
}

func (s *AuthStore) SignIn(ctx context.Context, email, password string) error {
	defer s.op.begin()()
	u, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Error("sign in failed", zap.String("email", email), zap.Error(err))
		return err
	}
	s.setUser(s.profile(ctx, u))
	return nil
}

// SignUp creates the account, sets its display name and writes the
// users/{uid} profile. A failure after account creation is not rolled back.
func (s *AuthStore) SignUp(ctx context.Context, email, password, username string) error {
	defer s.op.begin()()
	u, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		s.logger.Error("sign up failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if err := s.auth.UpdateProfile(ctx, username); err != nil {
		s.logger.Error("set display name failed", zap.String("uid", u.UID), zap.Error(err))
		return err
	}
	user := &User{ID: u.UID, Email: u.Email, Username: username}
	fields := docstore.Fields{"id": user.ID, "email": user.Email, "username": user.Username}
	if err := s.backend.Set(ctx, CollectionUsers, u.UID, fields); err != nil {
		s.logger.Error("write profile failed", zap.String("uid", u.UID), zap.Error(err))
		return err
	}
	s.setUser(user)
	return nil
}

func (s *AuthStore) SignOut(ctx context.Context) error {
	defer s.op.begin()()
	if err := s.auth.SignOut(ctx); err != nil {
		s.logger.Error("sign out failed", zap.Error(err))
		return err
	}
	s.setUser(nil)
	return nil
}

func (s *AuthStore) setUser(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	to := status.SignedOut
	if u != nil {
		to = status.SignedIn
	}
	if err := s.machine.Settle(to); err != nil {
		s.logger.Warn("auth state transition failed", zap.Error(err))
	}
	s.bus.Emit(bus.KindStoreAuth, Change{})
}

// User returns a copy of the signed-in user, or nil.
func (s *AuthStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading is true until the first auth state event and during operations.
func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	initialized := s.initialized
	s.mu.RUnlock()
	return !initialized || s.op.active()
}

func (s *AuthStore) State() status.State {
	return s.machine.Current()
}

// requireUser returns the signed-in user or ErrNotAuthenticated.
func (s *AuthStore) requireUser() (*User, error) {
	u := s.User()
	if u == nil {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}
