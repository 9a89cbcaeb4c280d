package stores

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/status"
	"github.com/matheus3301/classnotes/internal/store"
	"go.uber.org/zap"
)

func newTestStores(t *testing.T) (*Stores, *docserver.Local) {
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
	s := New(local, local, b, zap.NewNop())
	t.Cleanup(s.Auth.Initialize(context.Background()))
	return s, local
}

func signUp(t *testing.T, s *Stores) *User {
	t.Helper()
	if err := s.Auth.SignUp(context.Background(), "ana@school.test", "secret1", "ana"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	return s.Auth.User()
}

func TestAuthStoreLifecycle(t *testing.T) {
	s, _ := newTestStores(t)
	ctx := context.Background()

	if s.Auth.Loading() {
		t.Error("Loading() = true after Initialize")
	}
	if got := s.Auth.State(); got != status.SignedOut {
		t.Errorf("State() = %s, want SIGNED_OUT", got)
	}

	u := signUp(t, s)
	if u == nil || u.Username != "ana" || u.Email != "ana@school.test" {
		t.Fatalf("User() = %+v", u)
	}
	if got := s.Auth.State(); got != status.SignedIn {
		t.Errorf("State() = %s, want SIGNED_IN", got)
	}

	if err := s.Auth.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Auth.User() != nil {
		t.Error("User() != nil after SignOut")
	}

	if err := s.Auth.SignIn(ctx, "ana@school.test", "secret1"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	// The profile document supplies the username.
	if got := s.Auth.User(); got == nil || got.Username != "ana" || got.ID != u.ID {
		t.Errorf("User() after SignIn = %+v", got)
	}
	if err := s.Auth.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Auth.User() != nil || s.Auth.Loading() {
		t.Errorf("after SignOut user=%v loading=%v", s.Auth.User(), s.Auth.Loading())
	}
}

func TestAuthStoreSignInFailure(t *testing.T) {
	s, _ := newTestStores(t)
	err := s.Auth.SignIn(context.Background(), "nobody@school.test", "secret1")
	if !errors.Is(err, docstore.ErrInvalidCredentials) {
		t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
	}
	if s.Auth.User() != nil || s.Auth.Loading() {
		t.Errorf("after failure user=%v loading=%v", s.Auth.User(), s.Auth.Loading())
	}
}

func TestOperationsRequireUser(t *testing.T) {
	s, _ := newTestStores(t)
	ctx := context.Background()

	if _, err := s.Groups.CreateGroup(ctx, "Bio"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("CreateGroup() error = %v, want ErrNotAuthenticated", err)
	}
	if err := s.Notes.FetchNotes(ctx, "g1"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("FetchNotes() error = %v, want ErrNotAuthenticated", err)
	}
	if err := s.Chat.SendMessage(ctx, "g1", "hi"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("SendMessage() error = %v, want ErrNotAuthenticated", err)
	}
	if _, err := s.Chat.Subscribe(ctx, "g1"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Subscribe() error = %v, want ErrNotAuthenticated", err)
	}
	if s.Groups.Loading() || s.Notes.Loading() || s.Chat.Loading() {
		t.Error("loading flag left raised after failures")
	}
}

func TestGroupStore(t *testing.T) {
	s, _ := newTestStores(t)
	ctx := context.Background()
	u := signUp(t, s)

	id, err := s.Groups.CreateGroup(ctx, "Biologie")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	groups := s.Groups.Groups()
	if len(groups) != 1 || groups[0].ID != id || groups[0].Name != "Biologie" || groups[0].CreatedBy != u.ID {
		t.Fatalf("Groups() = %+v", groups)
	}
	if groups[0].CreatedAt == 0 {
		t.Error("CreatedAt not set")
	}

	if err := s.Groups.UpdateGroup(ctx, id, "Bio"); err != nil {
		t.Fatal(err)
	}
	if g, ok := s.Groups.Group(id); !ok || g.Name != "Bio" {
		t.Errorf("Group() = %+v, %v", g, ok)
	}

	// A failed write leaves local state unchanged.
	if err := s.Groups.UpdateGroup(ctx, "missing", "x"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("UpdateGroup(missing) error = %v", err)
	}
	if len(s.Groups.Groups()) != 1 {
		t.Error("failed update changed the group list")
	}

	if err := s.Groups.DeleteGroup(ctx, id); err != nil {
		t.Fatal(err)
	}
	if len(s.Groups.Groups()) != 0 {
		t.Errorf("Groups() after delete = %+v", s.Groups.Groups())
	}
	if s.Groups.Loading() {
		t.Error("Loading() = true after operations")
	}
}

func TestNoteStore(t *testing.T) {
	s, local := newTestStores(t)
	ctx := context.Background()
	signUp(t, s)

	id, err := s.Notes.CreateNote(ctx, "g1", "Reminder", "Bring slides")
	if err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}
	notes := s.Notes.Notes("g1")
	if len(notes) != 1 || notes[0].ID == "" || notes[0].ID != id || notes[0].Title != "Reminder" {
		t.Fatalf("Notes(g1) = %+v", notes)
	}

	// Notes of other users and other groups are not fetched.
	if _, err := local.Add(ctx, CollectionNotes, docstore.Fields{"groupId": "g1", "title": "theirs", "createdBy": "someone", "createdAt": 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Notes.CreateNote(ctx, "g2", "Other", "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Notes.FetchNotes(ctx, "g1"); err != nil {
		t.Fatal(err)
	}
	if n := s.Notes.Notes("g1"); len(n) != 1 {
		t.Errorf("Notes(g1) = %+v, want only own note", n)
	}

	if err := s.Notes.UpdateNote(ctx, "g1", id, "Reminder", "Bring slides and charger"); err != nil {
		t.Fatal(err)
	}
	got := s.Notes.Notes("g1")[0]
	if got.Content != "Bring slides and charger" || got.UpdatedAt < got.CreatedAt {
		t.Errorf("updated note = %+v", got)
	}

	if err := s.Notes.DeleteNote(ctx, "g1", id); err != nil {
		t.Fatal(err)
	}
	if n := s.Notes.Notes("g1"); len(n) != 0 {
		t.Errorf("Notes(g1) after delete = %+v", n)
	}
	if n := s.Notes.Notes("never-fetched"); n == nil || len(n) != 0 {
		t.Errorf("Notes(unknown) = %#v, want empty slice", n)
	}
}

func TestNotesNewestFirst(t *testing.T) {
	s, local := newTestStores(t)
	ctx := context.Background()
	u := signUp(t, s)

	for _, at := range []int64{2000, 3000, 1000} {
		if _, err := local.Add(ctx, CollectionNotes, docstore.Fields{"groupId": "g1", "title": "n", "createdBy": u.ID, "createdAt": at}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Notes.FetchNotes(ctx, "g1"); err != nil {
		t.Fatal(err)
	}
	notes := s.Notes.Notes("g1")
	if len(notes) != 3 || notes[0].CreatedAt != 3000 || notes[2].CreatedAt != 1000 {
		t.Errorf("Notes() order = %+v", notes)
	}
}

func TestFilterByDate(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	at := func(s string) int64 {
		ts, err := time.ParseInLocation("2006-01-02 15:04", s, loc)
		if err != nil {
			t.Fatal(err)
		}
		return ts.UnixMilli()
	}
	notes := []Note{
		{ID: "a", CreatedAt: at("2024-06-10 00:00")},
		{ID: "b", CreatedAt: at("2024-06-10 23:59")},
		{ID: "c", CreatedAt: at("2024-06-11 00:00")},
		{ID: "d", CreatedAt: at("2024-06-09 23:59")},
	}
	day := time.Date(2024, 6, 10, 12, 0, 0, 0, loc)

	got := FilterByDate(notes, day)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("FilterByDate() = %+v, want a and b", got)
	}
	if got := FilterByDate(nil, day); len(got) != 0 {
		t.Errorf("FilterByDate(nil) = %+v", got)
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if d.Format(DateLayout) != "2024-06-10" || d.Location() != time.Local {
		t.Errorf("ParseDay() = %v", d)
	}
	if _, err := ParseDay("10/06/2024"); err == nil {
		t.Error("ParseDay() accepted a non-ISO date")
	}
}

func waitMessages(t *testing.T, sub *docstore.Subscription, n int) docstore.Snapshot {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				t.Fatalf("subscription closed: %v", sub.Err())
			}
			if len(snap.Docs) == n {
				return snap
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %d messages", n)
		}
	}
}

func TestChatSubscription(t *testing.T) {
	s, local := newTestStores(t)
	ctx := context.Background()
	signUp(t, s)

	// Delivery order differs from creation order.
	for _, at := range []int64{3000, 1000, 2000} {
		if _, err := local.Add(ctx, CollectionMessages, docstore.Fields{"groupId": "g1", "content": "m", "senderId": "x", "createdAt": at}); err != nil {
			t.Fatal(err)
		}
	}

	sub, err := s.Chat.Subscribe(ctx, "g1")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer func() { _ = sub.Close() }()

	snap := waitMessages(t, sub, 3)
	first, _ := snap.Docs[0].Fields["createdAt"].(float64)
	if first != 1000 {
		t.Errorf("first delivered createdAt = %v, want oldest first", snap.Docs[0].Fields["createdAt"])
	}
	msgs := s.Chat.Messages("g1")
	if len(msgs) != 3 || msgs[0].CreatedAt != 1000 || msgs[1].CreatedAt != 2000 || msgs[2].CreatedAt != 3000 {
		t.Errorf("Messages() = %+v, want ascending", msgs)
	}

	if err := s.Chat.SendMessage(ctx, "g1", "bonjour"); err != nil {
		t.Fatal(err)
	}
	waitMessages(t, sub, 4)
	msgs = s.Chat.Messages("g1")
	last := msgs[len(msgs)-1]
	if last.Content != "bonjour" || last.SenderName != "ana" {
		t.Errorf("last message = %+v", last)
	}
}

func TestChatSubscriptionLimit(t *testing.T) {
	s, local := newTestStores(t)
	ctx := context.Background()
	signUp(t, s)

	for i := range ChatHistory + 5 {
		if _, err := local.Add(ctx, CollectionMessages, docstore.Fields{"groupId": "g1", "content": "m", "createdAt": int64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	sub, err := s.Chat.Subscribe(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sub.Close() }()

	waitMessages(t, sub, ChatHistory)
	msgs := s.Chat.Messages("g1")
	if msgs[0].CreatedAt != 5 || msgs[len(msgs)-1].CreatedAt != ChatHistory+4 {
		t.Errorf("kept range = %d..%d, want the latest %d", msgs[0].CreatedAt, msgs[len(msgs)-1].CreatedAt, ChatHistory)
	}
}

func TestChatFeedSwitchesGroups(t *testing.T) {
	s, _ := newTestStores(t)
	ctx := context.Background()
	signUp(t, s)

	feed := NewChatFeed(s.Chat)
	first, err := feed.Open(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	again, err := feed.Open(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if again != first || feed.sub != first {
		t.Error("reopening the same group replaced the subscription")
	}

	if _, err := feed.Open(ctx, "g2"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("previous subscription not closed on group change")
	}
	if feed.GroupID() != "g2" {
		t.Errorf("GroupID() = %q, want g2", feed.GroupID())
	}

	if err := feed.Send(ctx, "salut"); err != nil {
		t.Fatal(err)
	}
	second := feed.sub
	feed.Close()
	feed.Close()
	select {
	case <-second.Done():
	case <-time.After(time.Second):
		t.Fatal("Close did not release the subscription")
	}
	if feed.Updates() != nil {
		t.Error("Updates() non-nil after Close")
	}
}

func TestChatFeedReleaseKeepsNewerSubscription(t *testing.T) {
	s, _ := newTestStores(t)
	ctx := context.Background()
	signUp(t, s)

	feed := NewChatFeed(s.Chat)
	stale, err := feed.Open(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	current, err := feed.Open(ctx, "g2")
	if err != nil {
		t.Fatal(err)
	}

	feed.Release(stale)
	if closed(current) {
		t.Fatal("releasing the old subscription closed the current one")
	}
	if feed.GroupID() != "g2" || feed.Updates() == nil {
		t.Errorf("feed lost its subscription: group %q", feed.GroupID())
	}

	feed.Release(current)
	select {
	case <-current.Done():
	case <-time.After(time.Second):
		t.Fatal("Release did not close the current subscription")
	}
	if feed.GroupID() != "" {
		t.Errorf("GroupID() = %q after Release, want empty", feed.GroupID())
	}
	feed.Release(nil)
}

func TestDecodeSkipsInvalid(t *testing.T) {
	docs := []docstore.Document{
		{ID: "g1", Collection: "groups", Fields: docstore.Fields{"name": "ok", "createdAt": float64(5)}},
		{ID: "g2", Collection: "groups", Fields: docstore.Fields{"createdAt": float64(5)}},
		{ID: "g3", Collection: "groups", Fields: docstore.Fields{"name": 42}},
	}
	got := decodeAll[Group](docs, zap.NewNop())
	if len(got) != 1 || got[0].ID != "g1" || got[0].CreatedAt != 5 {
		t.Errorf("decodeAll() = %+v, want only g1", got)
	}
}

func TestStoreEvents(t *testing.T) {
	s, _ := newTestStores(t)
	ctx := context.Background()
	signUp(t, s)

	events, unsub := s.Groups.bus.Subscribe("store.groups", 4)
	defer unsub()
	if err := s.Groups.FetchGroups(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case evt := <-events:
		if evt.Kind != bus.KindStoreGroups {
			t.Errorf("Kind = %s", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no store.groups event")
	}
}
