package docstore

import (
	"context"
	"sync"
)

// AuthUser is the account identity returned by the auth provider.
type AuthUser struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Auth is the email/password auth provider.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*AuthUser, error)
	// SignUp creates the account and signs it in.
	SignUp(ctx context.Context, email, password string) (*AuthUser, error)
	// UpdateProfile sets the display name of the signed-in account.
	UpdateProfile(ctx context.Context, displayName string) error
	SignOut(ctx context.Context) error
	CurrentUser() *AuthUser
	// OnAuthStateChanged calls fn with the current user right away and
	// again on every change. The returned func unregisters fn.
	OnAuthStateChanged(fn func(*AuthUser)) func()
}

// AuthState holds the signed-in user and notifies listeners on change.
// The zero value is ready to use.
type AuthState struct {
	mu        sync.Mutex
	user      *AuthUser
	next      int
	listeners map[int]func(*AuthUser)
}

// Current returns a copy of the signed-in user, or nil.
func (s *AuthState) Current() *AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.user)
}

// Set replaces the user and notifies every listener.
func (s *AuthState) Set(u *AuthUser) {
	s.mu.Lock()
	s.user = clone(u)
	fns := make([]func(*AuthUser), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(clone(u))
	}
}

// Update replaces the user without notifying listeners. Profile edits use
// it: they change the user but not the signed-in state.
func (s *AuthState) Update(u *AuthUser) {
	s.mu.Lock()
	s.user = clone(u)
	s.mu.Unlock()
}

// Listen registers fn and calls it with the current user.
func (s *AuthState) Listen(fn func(*AuthUser)) func() {
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[int]func(*AuthUser))
	}
	id := s.next
	s.next++
	s.listeners[id] = fn
	current := clone(s.user)
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func clone(u *AuthUser) *AuthUser {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
