package status

import (
	"testing"

	"github.com/matheus3301/classnotes/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Initializing {
		t.Errorf("initial state = %s, want INITIALIZING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		path []State
	}{
		{[]State{SignedOut}},
		{[]State{SignedIn}},
		{[]State{SignedOut, SignedIn}},
		{[]State{SignedIn, SignedOut, SignedIn}},
	}
	for _, tt := range tests {
		m := NewMachine(nil)
		for _, s := range tt.path {
			if err := m.Transition(s); err != nil {
				t.Fatalf("Transition(%s) from %s: %v", s, m.Current(), err)
			}
		}
		if got, want := m.Current(), tt.path[len(tt.path)-1]; got != want {
			t.Errorf("state = %s, want %s", got, want)
		}
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	_ = m.Transition(SignedOut)
	if err := m.Transition(SignedOut); err == nil {
		t.Error("Transition(SIGNED_OUT -> SIGNED_OUT) should fail")
	}
	if err := m.Transition(Initializing); err == nil {
		t.Error("Transition(SIGNED_OUT -> INITIALIZING) should fail")
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	m := NewMachine(nil)
	for range 3 {
		if err := m.Settle(SignedIn); err != nil {
			t.Fatalf("Settle(SIGNED_IN): %v", err)
		}
	}
	if m.Current() != SignedIn {
		t.Errorf("state = %s, want SIGNED_IN", m.Current())
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("auth.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(SignedIn); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.KindAuthStateChanged {
		t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindAuthStateChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Initializing || change.To != SignedIn {
		t.Errorf("change = %v -> %v, want INITIALIZING -> SIGNED_IN", change.From, change.To)
	}
}
