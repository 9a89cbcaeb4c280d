// Package docserver implements the document store and accounts served by
// classnotesd.
package docserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/store"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

// Engine executes document writes, queries and live watches over the store.
// Every successful write publishes bus.DocChangedKind(collection).
type Engine struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewEngine creates a document engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		bus:    b,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Add creates a document with a generated id.
func (e *Engine) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	now := e.now().UnixMilli()
	d := &store.Doc{Collection: collection, ID: e.newID(), Data: data, CreatedAt: now, UpdatedAt: now}
	if err := e.db.InsertDocument(ctx, d); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	e.publish(collection, d.ID, "add")
	return d.ID, nil
}

// Set creates or replaces a document.
func (e *Engine) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := docstore.ValidateRef(collection, id); err != nil {
		return err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	now := e.now().UnixMilli()
	if err := e.db.PutDocument(ctx, &store.Doc{Collection: collection, ID: id, Data: data, CreatedAt: now, UpdatedAt: now}); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	e.publish(collection, id, "set")
	return nil
}

// Update merges fields into an existing document.
func (e *Engine) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := docstore.ValidateRef(collection, id); err != nil {
		return err
	}
	patch, err := encodeFields(fields)
	if err != nil {
		return err
	}
	ok, err := e.db.MergeDocument(ctx, collection, id, patch, e.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	e.publish(collection, id, "update")
	return nil
}

// Delete removes a document. A missing document is not an error and
// publishes nothing.
func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	if err := docstore.ValidateRef(collection, id); err != nil {
		return err
	}
	existed, err := e.db.DeleteDocument(ctx, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if existed {
		e.publish(collection, id, "delete")
	}
	return nil
}

// Get returns one document or docstore.ErrNotFound.
func (e *Engine) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if err := docstore.ValidateRef(collection, id); err != nil {
		return nil, err
	}
	d, err := e.db.GetDocument(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	doc, err := toDocument(*d)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Query runs q once.
func (e *Engine) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	raw, err := e.db.QueryDocuments(ctx, q)
	if err != nil {
		return nil, err
	}
	return toDocuments(raw)
}

func (e *Engine) publish(collection, id, op string) {
	e.bus.Emit(bus.DocChangedKind(collection), bus.DocChange{Collection: collection, ID: id, Op: op})
}

// encodeFields normalizes fields to JSON-representable values.
func encodeFields(fields docstore.Fields) (string, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", docstore.ErrInvalidArgument, err)
	}
	data, err := json.Marshal(st.AsMap())
	if err != nil {
		return "", fmt.Errorf("%w: %v", docstore.ErrInvalidArgument, err)
	}
	return string(data), nil
}

func toDocument(d store.Doc) (docstore.Document, error) {
	fields := docstore.Fields{}
	if err := json.Unmarshal([]byte(d.Data), &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("decode %s/%s: %w", d.Collection, d.ID, err)
	}
	return docstore.Document{
		ID:         d.ID,
		Collection: d.Collection,
		Fields:     fields,
		CreateTime: d.CreatedAt,
		UpdateTime: d.UpdatedAt,
	}, nil
}

func toDocuments(raw []store.Doc) ([]docstore.Document, error) {
	docs := make([]docstore.Document, 0, len(raw))
	for _, d := range raw {
		doc, err := toDocument(d)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
