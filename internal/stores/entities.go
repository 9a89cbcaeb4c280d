package stores

import (
	"maps"

	"github.com/go-playground/validator/v10"
	"github.com/matheus3301/classnotes/internal/docstore"
	"go.uber.org/zap"
)

// Collections used by the stores.
const (
	CollectionUsers    = "users"
	CollectionGroups   = "groups"
	CollectionNotes    = "notes"
	CollectionMessages = "messages"
)

// User is the profile of a signed-in account.
type User struct {
	ID       string `json:"id" validate:"required"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Group is a collaboration space holding notes and one chat thread.
type Group struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	CreatedBy string `json:"createdBy"`
	// CreatedAt is Unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

type Note struct {
	ID        string `json:"id" validate:"required"`
	GroupID   string `json:"groupId" validate:"required"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedBy string `json:"createdBy"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type Message struct {
	ID         string `json:"id" validate:"required"`
	GroupID    string `json:"groupId" validate:"required"`
	Content    string `json:"content"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	CreatedAt  int64  `json:"createdAt"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode maps a document onto T with the document id injected as "id".
func decode[T any](d docstore.Document) (T, error) {
	var v T
	fields := maps.Clone(d.Fields)
	if fields == nil {
		fields = docstore.Fields{}
	}
	fields["id"] = d.ID
	d.Fields = fields
	if err := d.DataTo(&v); err != nil {
		return v, err
	}
	if err := validate.Struct(&v); err != nil {
		return v, err
	}
	return v, nil
}

// decodeAll decodes docs in order, logging and skipping the invalid ones.
func decodeAll[T any](docs []docstore.Document, logger *zap.Logger) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			logger.Warn("skipping invalid document",
				zap.String("collection", d.Collection),
				zap.String("id", d.ID),
				zap.Error(err),
			)
			continue
		}
		out = append(out, v)
	}
	return out
}
