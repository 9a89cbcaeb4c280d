package docserver

import (
	"context"
	"errors"
	"testing"

	"github.com/matheus3301/classnotes/internal/docstore"
)

func testLocal(t *testing.T) *Local {
	t.Helper()
	e, db := testEngine(t)
	return NewLocal(e, testAccounts(t, db))
}

func TestLocalRequiresSignIn(t *testing.T) {
	l := testLocal(t)
	ctx := context.Background()

	if _, err := l.Add(ctx, "groups", docstore.Fields{"name": "x"}); !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Errorf("Add() signed out error = %v, want ErrUnauthenticated", err)
	}
	if _, err := l.Watch(ctx, docstore.Collection("groups")); !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Errorf("Watch() signed out error = %v, want ErrUnauthenticated", err)
	}
	if err := l.UpdateProfile(ctx, "ana"); !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Errorf("UpdateProfile() signed out error = %v, want ErrUnauthenticated", err)
	}
}

func TestLocalAuthStateNotifications(t *testing.T) {
	l := testLocal(t)
	ctx := context.Background()

	var events []string
	unsub := l.OnAuthStateChanged(func(u *docstore.AuthUser) {
		if u == nil {
			events = append(events, "out")
			return
		}
		events = append(events, "in:"+u.Email)
	})
	defer unsub()

	if _, err := l.SignUp(ctx, "ana@school.test", "secret1"); err != nil {
		t.Fatal(err)
	}
	if err := l.UpdateProfile(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	if got := l.CurrentUser(); got == nil || got.DisplayName != "ana" {
		t.Errorf("CurrentUser() = %+v, want display name ana", got)
	}
	if err := l.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if l.CurrentUser() != nil {
		t.Error("CurrentUser() not nil after SignOut")
	}

	want := []string{"out", "in:ana@school.test", "out"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events = %v, want %v", events, want)
			break
		}
	}
}
