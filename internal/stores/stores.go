// Package stores holds the client-side state containers: auth session,
// groups, notes and chat. Every write goes to the document store and is
// followed by a full re-fetch; chat is kept current by a live query.
package stores

import (
	"errors"
	"sync"
	"time"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/status"
	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by store operations when nobody is signed in.
var ErrNotAuthenticated = errors.New("User not authenticated")

// Change is the payload of the store.* bus events.
type Change struct {
	GroupID string
}

// Stores wires the four containers over one backend.
type Stores struct {
	Auth   *AuthStore
	Groups *GroupStore
	Notes  *NoteStore
	Chat   *ChatStore
}

// New creates the stores. Call Auth.Initialize to start tracking the session.
func New(backend docstore.Backend, auth docstore.Auth, b *bus.Bus, logger *zap.Logger) *Stores {
	authStore := NewAuthStore(auth, backend, status.NewMachine(b), b, logger.Named("auth"))
	return &Stores{
		Auth:   authStore,
		Groups: NewGroupStore(backend, authStore, b, logger.Named("groups")),
		Notes:  NewNoteStore(backend, authStore, b, logger.Named("notes")),
		Chat:   NewChatStore(backend, authStore, b, logger.Named("chat")),
	}
}

// loading counts in-flight operations. A nested re-fetch keeps the flag
// raised until the outer operation returns.
type loading struct {
	mu sync.Mutex
	n  int
}

func (l *loading) begin() func() {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.n--
		l.mu.Unlock()
	}
}

func (l *loading) active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n > 0
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
