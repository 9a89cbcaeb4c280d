package stores

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docstore"
	"go.uber.org/zap"
)

// ChatHistory is how many of the latest messages a subscription follows.
const ChatHistory = 50

// ChatStore holds the live message list per group.
type ChatStore struct {
	backend docstore.Backend
	auth    *AuthStore
	bus     *bus.Bus
	logger  *zap.Logger
	op      loading

	mu       sync.RWMutex
	messages map[string][]Message
}

func NewChatStore(backend docstore.Backend, auth *AuthStore, b *bus.Bus, logger *zap.Logger) *ChatStore {
	return &ChatStore{backend: backend, auth: auth, bus: b, logger: logger, messages: make(map[string][]Message)}
}

// SendMessage posts content as the signed-in user. Subscribers see it
// through their live query.
func (s *ChatStore) SendMessage(ctx context.Context, groupID, content string) error {
	defer s.op.begin()()
	user, err := s.auth.requireUser()
	if err != nil {
		s.logger.Error("send message failed", zap.Error(err))
		return err
	}
	_, err = s.backend.Add(ctx, CollectionMessages, docstore.Fields{
		"groupId":    groupID,
		"content":    content,
		"senderId":   user.ID,
		"senderName": user.Username,
		"createdAt":  nowMillis(),
	})
	if err != nil {
		s.logger.Error("send message failed", zap.String("group", groupID), zap.Error(err))
		return err
	}
	return nil
}

// Subscribe follows the latest messages of a group. Every snapshot
// replaces the group's local list, oldest first. The returned subscription
// carries the same chronological snapshots; the caller must Close it.
func (s *ChatStore) Subscribe(ctx context.Context, groupID string) (*docstore.Subscription, error) {
	defer s.op.begin()()
	if _, err := s.auth.requireUser(); err != nil {
		s.logger.Error("subscribe failed", zap.Error(err))
		return nil, err
	}
	q := docstore.Collection(CollectionMessages).
		Where("groupId", docstore.Equal, groupID).
		OrderBy("createdAt", docstore.Desc).
		Limit(ChatHistory)
	inner, err := s.backend.Watch(ctx, q)
	if err != nil {
		s.logger.Error("subscribe failed", zap.String("group", groupID), zap.Error(err))
		return nil, err
	}

	out := docstore.NewSubscription(func() { _ = inner.Close() })
	go func() {
		for snap := range inner.Snapshots() {
			if closed(out) {
				return
			}
			slices.Reverse(snap.Docs)
			s.apply(groupID, snap)
			if !out.Deliver(snap) {
				return
			}
		}
		if err := inner.Err(); err != nil {
			s.logger.Warn("chat subscription ended", zap.String("group", groupID), zap.Error(err))
			out.Fail(err)
			return
		}
		_ = out.Close()
	}()
	return out, nil
}

func (s *ChatStore) apply(groupID string, snap docstore.Snapshot) {
	messages := decodeAll[Message](snap.Docs, s.logger)
	s.mu.Lock()
	s.messages[groupID] = messages
	s.mu.Unlock()
	s.bus.Emit(bus.KindStoreChat, Change{GroupID: groupID})
}

// Messages returns the group's messages sorted by creation time, oldest first.
func (s *ChatStore) Messages(groupID string) []Message {
	s.mu.RLock()
	out := slices.Clone(s.messages[groupID])
	s.mu.RUnlock()
	if out == nil {
		return []Message{}
	}
	slices.SortStableFunc(out, func(a, b Message) int { return cmp.Compare(a.CreatedAt, b.CreatedAt) })
	return out
}

func (s *ChatStore) Loading() bool {
	return s.op.active()
}
