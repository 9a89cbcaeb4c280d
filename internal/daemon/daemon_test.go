package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/classnotes/internal/api"
	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/client"
	"github.com/matheus3301/classnotes/internal/config"
	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/lock"
	"github.com/matheus3301/classnotes/internal/session"
	"github.com/matheus3301/classnotes/internal/store"
	"go.uber.org/zap"
)

// startDaemon wires the daemon by hand and returns a connected client.
func startDaemon(t *testing.T) *client.Client {
	t.Helper()
	// Short path: unix socket paths are limited to ~104 bytes on macOS.
	tmpDir, err := os.MkdirTemp("/tmp", "cn-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	lk, err := lock.Acquire(tmpDir, lockName)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = lk.Release() })

	db, err := store.Open(filepath.Join(tmpDir, "classnotes.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := zap.NewNop()
	engine := docserver.NewEngine(db, bus.New(), logger)
	accounts := docserver.NewAccounts(db, []byte("test-secret"), time.Hour)

	srv, err := NewServer(
		Params{SessionName: "test", SocketPath: filepath.Join(tmpDir, "d.sock")},
		&config.Daemon{},
		logger,
		api.NewAuthenticator(accounts, logger),
		api.NewAuthService(accounts, logger),
		api.NewDocumentService(engine, logger),
	)
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Start() }()
	t.Cleanup(func() { srv.Stop(context.Background()) })

	c, err := client.New(srv.Addr())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		err := c.Ping(ctx)
		cancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon never became healthy: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	return c
}

func TestDaemonLifecycle(t *testing.T) {
	c := startDaemon(t)
	ctx := context.Background()

	if _, err := c.Add(ctx, "groups", docstore.Fields{"name": "Bio"}); !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Fatalf("Add() before sign-in error = %v, want ErrUnauthenticated", err)
	}

	user, err := c.SignUp(ctx, "ana@school.test", "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if err := c.UpdateProfile(ctx, "ana"); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if got := c.CurrentUser(); got.DisplayName != "ana" {
		t.Errorf("DisplayName = %q, want ana", got.DisplayName)
	}

	id, err := c.Add(ctx, "groups", docstore.Fields{"name": "Bio", "createdBy": user.UID, "createdAt": int64(1718000000000)})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	doc, err := c.Get(ctx, "groups", id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.Fields["name"] != "Bio" {
		t.Errorf("name = %v, want Bio", doc.Fields["name"])
	}

	docs, err := c.Query(ctx, docstore.Collection("groups").Where("createdBy", docstore.Equal, user.UID))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != id {
		t.Errorf("Query() = %+v, want one group %s", docs, id)
	}

	if err := c.Update(ctx, "groups", "missing", docstore.Fields{"name": "x"}); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if _, err := c.SignIn(ctx, "ana@school.test", "wrong"); !errors.Is(err, docstore.ErrInvalidCredentials) {
		t.Errorf("SignIn(wrong) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := c.SignUp(ctx, "ana@school.test", "secret1"); !errors.Is(err, docstore.ErrEmailInUse) {
		t.Errorf("SignUp(duplicate) error = %v, want ErrEmailInUse", err)
	}
}

func TestDaemonWatchStream(t *testing.T) {
	c := startDaemon(t)
	ctx := context.Background()
	if _, err := c.SignUp(ctx, "ana@school.test", "secret1"); err != nil {
		t.Fatal(err)
	}

	q := docstore.Collection("messages").Where("groupId", docstore.Equal, "g1").OrderBy("createdAt", docstore.Desc).Limit(50)
	sub, err := c.Watch(ctx, q)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer func() { _ = sub.Close() }()

	recv := func() docstore.Snapshot {
		t.Helper()
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				t.Fatalf("stream closed: %v", sub.Err())
			}
			return snap
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for snapshot")
		}
		return docstore.Snapshot{}
	}

	if snap := recv(); len(snap.Docs) != 0 {
		t.Fatalf("initial snapshot = %d docs, want 0", len(snap.Docs))
	}
	if _, err := c.Add(ctx, "messages", docstore.Fields{"groupId": "g1", "content": "hi", "createdAt": 1}); err != nil {
		t.Fatal(err)
	}
	snap := recv()
	if len(snap.Docs) != 1 || snap.Docs[0].Fields["content"] != "hi" {
		t.Errorf("snapshot = %+v, want the new message", snap.Docs)
	}
}

func TestWatchRequiresToken(t *testing.T) {
	c := startDaemon(t)
	_, err := c.Watch(context.Background(), docstore.Collection("messages"))
	if !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Errorf("Watch() signed out error = %v, want ErrUnauthenticated", err)
	}
}

func TestResumeWithSavedToken(t *testing.T) {
	c := startDaemon(t)
	ctx := context.Background()
	user, err := c.SignUp(ctx, "ana@school.test", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	token := c.Token()
	_ = c.SignOut(ctx)

	resumed, err := c.Resume(ctx, token)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if resumed.UID != user.UID {
		t.Errorf("Resume() uid = %q, want %q", resumed.UID, user.UID)
	}

	_ = c.SignOut(ctx)
	if _, err := c.Resume(ctx, "not-a-token"); !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Errorf("Resume(bad) error = %v, want ErrUnauthenticated", err)
	}
	if c.CurrentUser() != nil || c.Token() != "" {
		t.Error("failed Resume left credentials behind")
	}
}

func TestConnectResumesSavedCredentials(t *testing.T) {
	t.Setenv("CLASSNOTES_HOME", t.TempDir())
	c := startDaemon(t)
	ctx := context.Background()
	user, err := c.SignUp(ctx, "ana@school.test", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if err := client.SaveCredentials("test", c); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}

	target := c.Target()
	resumed, err := client.Connect(ctx, "test", target)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = resumed.Close() }()
	if u := resumed.CurrentUser(); u == nil || u.UID != user.UID {
		t.Errorf("CurrentUser() after Connect = %+v, want %s", u, user.UID)
	}

	// A token the daemon rejects is dropped from the state file.
	if err := session.UpdateState("test", func(st *session.State) { st.Token = "garbage" }); err != nil {
		t.Fatal(err)
	}
	fresh, err := client.Connect(ctx, "test", target)
	if err != nil {
		t.Fatalf("Connect(stale) error = %v", err)
	}
	defer func() { _ = fresh.Close() }()
	if fresh.CurrentUser() != nil {
		t.Error("stale token resumed a session")
	}
	if st, _ := session.LoadState("test"); st.Token != "" {
		t.Errorf("stale token kept in state: %q", st.Token)
	}
	if !client.Probe(target) {
		t.Error("Probe() = false for a running daemon")
	}
}

// TestNewServerUsesSocketOverride verifies NewServer takes Params (fx cannot
// resolve a bare string) and binds the overridden socket.
func TestNewServerUsesSocketOverride(t *testing.T) {
	tmpDir, err := os.MkdirTemp("/tmp", "cn-fx-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	socketPath := filepath.Join(tmpDir, "d.sock")
	logger := zap.NewNop()
	srv, err := NewServer(
		Params{SessionName: "fxtest", SocketPath: socketPath},
		&config.Daemon{},
		logger,
		api.NewAuthenticator(nil, logger),
		api.NewAuthService(nil, logger),
		api.NewDocumentService(nil, logger),
	)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if _, statErr := os.Stat(socketPath); statErr != nil {
		t.Fatalf("socket not created at %s: %v", socketPath, statErr)
	}
	if got, want := srv.Addr(), "unix://"+socketPath; got != want {
		t.Errorf("Addr() = %q, want %q", got, want)
	}
	srv.Stop(context.Background())
	if _, statErr := os.Stat(socketPath); !os.IsNotExist(statErr) {
		t.Errorf("socket still present after Stop: %v", statErr)
	}
}
