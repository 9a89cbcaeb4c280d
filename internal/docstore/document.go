// Package docstore defines the document-store contract shared by the
// classnotes daemon, its gRPC client and the in-process adapter.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("docstore: document not found")
	ErrUnauthenticated    = errors.New("docstore: not signed in")
	ErrInvalidArgument    = errors.New("docstore: invalid argument")
	ErrEmailInUse         = errors.New("docstore: email already in use")
	ErrInvalidCredentials = errors.New("docstore: invalid email or password")
	ErrWeakPassword       = errors.New("docstore: password should be at least 6 characters")
)

// Fields is the JSON-shaped payload of a document.
type Fields map[string]any

// Document is one record of a collection.
type Document struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Fields     Fields `json:"fields"`
	// CreateTime and UpdateTime are Unix milliseconds assigned by the server.
	CreateTime int64 `json:"createTime"`
	UpdateTime int64 `json:"updateTime"`
}

// DataTo decodes the document fields into v, which must be a pointer.
func (d Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", d.Collection, d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// Snapshot is the full result set of a watched query at one point in time.
type Snapshot struct {
	Docs []Document `json:"docs"`
	// ReadTime is Unix milliseconds.
	ReadTime int64 `json:"readTime"`
}

// IDs returns the document ids in snapshot order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.Docs))
	for i, d := range s.Docs {
		ids[i] = d.ID
	}
	return ids
}
