package views

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/store"
	"github.com/matheus3301/classnotes/internal/stores"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"go.uber.org/zap"
)

func newChatThread(t *testing.T) (*ChatThread, *stores.ChatFeed) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	local := docserver.NewLocal(
		docserver.NewEngine(db, b, zap.NewNop()),
		docserver.NewAccounts(db, []byte("test-secret"), time.Hour),
	)
	st := stores.New(local, local, b, zap.NewNop())
	t.Cleanup(st.Auth.Initialize(context.Background()))
	if err := st.Auth.SignUp(context.Background(), "ana@school.test", "secret1", "ana"); err != nil {
		t.Fatal(err)
	}

	feed := stores.NewChatFeed(st.Chat)
	t.Cleanup(feed.Close)
	ct := NewChatThread(ui.DefaultTheme(), feed, func(fn func()) { fn() }, func(error) {})
	ct.SetGroup(stores.Group{ID: "g1", Name: "Bio"}, st.Auth.User().ID)
	return ct, feed
}

func waitFollowing(t *testing.T, feed *stores.ChatFeed, groupID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for feed.GroupID() != groupID || feed.Updates() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("feed never followed %s", groupID)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// A follow left over from a stopped page must not close the
// subscription of the page that replaced it.
func TestChatThreadStaleFollowKeepsNewerSubscription(t *testing.T) {
	ct, feed := newChatThread(t)

	stopped, cancel := context.WithCancel(context.Background())
	cancel()

	ct.Start()
	defer ct.Stop()
	waitFollowing(t, feed, "g1")

	ct.mu.Lock()
	older := ct.gen - 1
	ct.mu.Unlock()
	ct.follow(stopped, older, "g1")

	sub, err := feed.Open(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-sub.Done():
		t.Fatal("stale follow closed the current subscription")
	default:
	}
}

func TestChatThreadStoppedFollowReleases(t *testing.T) {
	ct, feed := newChatThread(t)

	ct.Start()
	waitFollowing(t, feed, "g1")
	ct.Stop()
	if feed.GroupID() != "" {
		t.Fatalf("GroupID() = %q after Stop, want empty", feed.GroupID())
	}

	// Stop raced ahead of the open: the follow releases what it opened.
	stopped, cancel := context.WithCancel(context.Background())
	cancel()
	ct.mu.Lock()
	current := ct.gen
	ct.mu.Unlock()
	ct.follow(stopped, current, "g1")
	if feed.GroupID() != "" || feed.Updates() != nil {
		t.Errorf("feed still following %q after a stopped follow", feed.GroupID())
	}
}
