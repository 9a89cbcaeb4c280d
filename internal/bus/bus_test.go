package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("doc.", 10)
	defer unsub()

	b.Emit(DocChangedKind("groups"), DocChange{Collection: "groups", ID: "g1", Op: "add"})

	select {
	case evt := <-ch:
		if evt.Kind != "doc.groups.changed" {
			t.Errorf("got kind %q, want doc.groups.changed", evt.Kind)
		}
		change, ok := evt.Payload.(DocChange)
		if !ok {
			t.Fatalf("payload type = %T, want DocChange", evt.Payload)
		}
		if change.Collection != "groups" || change.ID != "g1" {
			t.Errorf("change = %+v", change)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Emit did not stamp the event")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("store.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindAuthStateChanged})
	b.Publish(Event{Kind: KindStoreChat})

	select {
	case evt := <-ch:
		if evt.Kind != KindStoreChat {
			t.Errorf("got kind %q, want %q", evt.Kind, KindStoreChat)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("doc.", 10)
	unsub()
	unsub()

	b.Publish(Event{Kind: DocChangedKind("groups")})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
	if n := b.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}

func TestDocPrefixSeparatesCollections(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(DocPrefix("notes"), 10)
	defer unsub()

	b.Emit(DocChangedKind("notes2"), DocChange{Collection: "notes2"})
	b.Emit(DocChangedKind("messages"), DocChange{Collection: "messages"})
	b.Emit(DocChangedKind("notes"), DocChange{Collection: "notes"})

	select {
	case evt := <-ch:
		if change := evt.Payload.(DocChange); change.Collection != "notes" {
			t.Errorf("got change for %q, want notes", change.Collection)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("store.", 1)
	defer unsub()

	b.Publish(Event{Kind: "store.one"})
	b.Publish(Event{Kind: "store.two"})

	evt := <-ch
	if evt.Kind != "store.one" {
		t.Errorf("got %q, want store.one", evt.Kind)
	}
}

func TestNilBusPublish(t *testing.T) {
	var b *Bus
	b.Emit(KindStoreGroups, nil)
}
