package docserver

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testEngine(t *testing.T) (*Engine, *store.DB) {
	t.Helper()
	db := testDB(t)
	return NewEngine(db, bus.New(), zap.NewNop()), db
}

func testAccounts(t *testing.T, db *store.DB) *Accounts {
	t.Helper()
	a := NewAccounts(db, []byte("test-secret"), time.Hour)
	a.cost = bcrypt.MinCost
	return a
}
