package docstore

import "context"

// Backend is the document store as seen by clients.
type Backend interface {
	// Add creates a document with a server-assigned id.
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	// Set creates or replaces the document with the given id.
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Update merges fields into an existing document; ErrNotFound if missing.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	// Watch delivers the query's full result set now and after every change.
	Watch(ctx context.Context, q Query) (*Subscription, error)
}
