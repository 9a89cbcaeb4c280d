package stores

import (
	"context"
	"slices"
	"sync"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docstore"
	"go.uber.org/zap"
)

// GroupStore holds every group.
type GroupStore struct {
	backend docstore.Backend
	auth    *AuthStore
	bus     *bus.Bus
	logger  *zap.Logger
	op      loading

	mu     sync.RWMutex
	groups []Group
}

func NewGroupStore(backend docstore.Backend, auth *AuthStore, b *bus.Bus, logger *zap.Logger) *GroupStore {
	return &GroupStore{backend: backend, auth: auth, bus: b, logger: logger}
}

// CreateGroup adds a group owned by the signed-in user and returns its id.
func (s *GroupStore) CreateGroup(ctx context.Context, name string) (string, error) {
	defer s.op.begin()()
	user, err := s.auth.requireUser()
	if err != nil {
		s.logger.Error("create group failed", zap.Error(err))
		return "", err
	}
	id, err := s.backend.Add(ctx, CollectionGroups, docstore.Fields{
		"name":      name,
		"createdBy": user.ID,
		"createdAt": nowMillis(),
	})
	if err != nil {
		s.logger.Error("create group failed", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return id, s.FetchGroups(ctx)
}

func (s *GroupStore) UpdateGroup(ctx context.Context, id, name string) error {
	defer s.op.begin()()
	if _, err := s.auth.requireUser(); err != nil {
		s.logger.Error("update group failed", zap.Error(err))
		return err
	}
	if err := s.backend.Update(ctx, CollectionGroups, id, docstore.Fields{"name": name}); err != nil {
		s.logger.Error("update group failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return s.FetchGroups(ctx)
}

func (s *GroupStore) DeleteGroup(ctx context.Context, id string) error {
	defer s.op.begin()()
	if _, err := s.auth.requireUser(); err != nil {
		s.logger.Error("delete group failed", zap.Error(err))
		return err
	}
	if err := s.backend.Delete(ctx, CollectionGroups, id); err != nil {
		s.logger.Error("delete group failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return s.FetchGroups(ctx)
}

// FetchGroups replaces the local list with every group in the store.
func (s *GroupStore) FetchGroups(ctx context.Context) error {
	defer s.op.begin()()
	if _, err := s.auth.requireUser(); err != nil {
		s.logger.Error("fetch groups failed", zap.Error(err))
		return err
	}
	docs, err := s.backend.Query(ctx, docstore.Collection(CollectionGroups))
	if err != nil {
		s.logger.Error("fetch groups failed", zap.Error(err))
		return err
	}
	groups := decodeAll[Group](docs, s.logger)

	s.mu.Lock()
	s.groups = groups
	s.mu.Unlock()
	s.bus.Emit(bus.KindStoreGroups, Change{})
	return nil
}

func (s *GroupStore) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.groups)
}

// Group returns one group from the local list.
func (s *GroupStore) Group(id string) (Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.groups, func(g Group) bool { return g.ID == id })
	if i < 0 {
		return Group{}, false
	}
	return s.groups[i], true
}

func (s *GroupStore) Loading() bool {
	return s.op.active()
}
