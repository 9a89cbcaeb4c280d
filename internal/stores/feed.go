package stores

import (
	"context"
	"sync"

	"github.com/matheus3301/classnotes/internal/docstore"
)

// ChatFeed owns at most one chat subscription. Opening another group
// releases the previous one.
type ChatFeed struct {
	chat *ChatStore

	mu      sync.Mutex
	groupID string
	sub     *docstore.Subscription
}

func NewChatFeed(chat *ChatStore) *ChatFeed {
	return &ChatFeed{chat: chat}
}

// Open follows groupID and returns the subscription now backing the feed.
// Reopening the current group returns the live subscription unchanged.
func (f *ChatFeed) Open(ctx context.Context, groupID string) (*docstore.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub != nil && f.groupID == groupID && !closed(f.sub) {
		return f.sub, nil
	}
	f.closeLocked()
	sub, err := f.chat.Subscribe(ctx, groupID)
	if err != nil {
		return nil, err
	}
	f.groupID = groupID
	f.sub = sub
	return sub, nil
}

// Release closes sub. The feed is cleared only while sub still backs it,
// so a late release never tears down a newer subscription.
func (f *ChatFeed) Release(sub *docstore.Subscription) {
	if sub == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub == sub {
		f.closeLocked()
		return
	}
	_ = sub.Close()
}

// Updates returns the current subscription's snapshot channel, or nil.
func (f *ChatFeed) Updates() <-chan docstore.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub == nil {
		return nil
	}
	return f.sub.Snapshots()
}

// GroupID returns the followed group, or "".
func (f *ChatFeed) GroupID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupID
}

func (f *ChatFeed) Messages() []Message {
	return f.chat.Messages(f.GroupID())
}

func (f *ChatFeed) Send(ctx context.Context, content string) error {
	return f.chat.SendMessage(ctx, f.GroupID(), content)
}

// Close releases the subscription. Safe to call more than once.
func (f *ChatFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

func (f *ChatFeed) closeLocked() {
	if f.sub != nil {
		_ = f.sub.Close()
	}
	f.sub = nil
	f.groupID = ""
}

func closed(sub *docstore.Subscription) bool {
	select {
	case <-sub.Done():
		return true
	default:
		return false
	}
}
