package bus

import "time"

// Event kinds published on the bus. Subscribers filter by prefix, so
// "doc." receives every document change and "store." every store update.
// Document changes are keyed per collection: "doc.<collection>.changed".
const (
	KindDocPrefix        = "doc."
	KindAuthStateChanged = "auth.state_changed"
	KindStoreGroups      = "store.groups"
	KindStoreNotes       = "store.notes"
	KindStoreChat        = "store.chat"
	KindStoreAuth        = "store.auth"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// DocChangedKind is the kind published for a write to collection.
func DocChangedKind(collection string) string {
	return KindDocPrefix + collection + ".changed"
}

// DocPrefix matches the changes of one collection only.
func DocPrefix(collection string) string {
	return KindDocPrefix + collection + "."
}

// DocChange is the payload of a DocChangedKind event.
type DocChange struct {
	Collection string
	ID         string
	Op         string
}
