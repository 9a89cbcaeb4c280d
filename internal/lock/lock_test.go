package lock

import (
	"errors"
	"os"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, "classnotesd")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	pid, ok := Holder(dir, "classnotesd")
	if !ok || pid != os.Getpid() {
		t.Errorf("Holder() = %d, %v, want %d, true", pid, ok, os.Getpid())
	}

	if err := l.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if _, ok := Holder(dir, "classnotesd"); ok {
		t.Error("lock file still present after Release()")
	}
}

func TestDoubleAcquireFails(t *testing.T) {
	dir := t.TempDir()

	l1, err := Acquire(dir, "classnotesd")
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l1.Release() }()

	_, err = Acquire(dir, "classnotesd")
	if err == nil {
		t.Fatal("second Acquire() should fail")
	}

	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("expected *HeldError, got %T: %v", err, err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("HeldError.PID = %d, want %d", held.PID, os.Getpid())
	}
}

func TestDistinctNamesDoNotConflict(t *testing.T) {
	dir := t.TempDir()

	a, err := Acquire(dir, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Release() }()

	b, err := Acquire(dir, "b")
	if err != nil {
		t.Fatalf("Acquire(b) error = %v", err)
	}
	_ = b.Release()
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	l, err := Acquire(t.TempDir(), "classnotesd")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}
