package stores

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docstore"
	"go.uber.org/zap"
)

// DateLayout is the calendar-day format used by FilterByDate.
const DateLayout = "2006-01-02"

// NoteStore holds the signed-in user's notes per group.
type NoteStore struct {
	backend docstore.Backend
	auth    *AuthStore
	bus     *bus.Bus
	logger  *zap.Logger
	op      loading

	mu    sync.RWMutex
	notes map[string][]Note
}

func NewNoteStore(backend docstore.Backend, auth *AuthStore, b *bus.Bus, logger *zap.Logger) *NoteStore {
	return &NoteStore{backend: backend, auth: auth, bus: b, logger: logger, notes: make(map[string][]Note)}
}

func (s *NoteStore) CreateNote(ctx context.Context, groupID, title, content string) (string, error) {
	defer s.op.begin()()
	user, err := s.auth.requireUser()
	if err != nil {
		s.logger.Error("create note failed", zap.Error(err))
		return "", err
	}
	now := nowMillis()
	id, err := s.backend.Add(ctx, CollectionNotes, docstore.Fields{
		"groupId":   groupID,
		"title":     title,
		"content":   content,
		"createdBy": user.ID,
		"createdAt": now,
		"updatedAt": now,
	})
	if err != nil {
		s.logger.Error("create note failed", zap.String("group", groupID), zap.Error(err))
		return "", err
	}
	return id, s.FetchNotes(ctx, groupID)
}

func (s *NoteStore) UpdateNote(ctx context.Context, groupID, noteID, title, content string) error {
	defer s.op.begin()()
	if _, err := s.auth.requireUser(); err != nil {
		s.logger.Error("update note failed", zap.Error(err))
		return err
	}
	err := s.backend.Update(ctx, CollectionNotes, noteID, docstore.Fields{
		"title":     title,
		"content":   content,
		"updatedAt": nowMillis(),
	})
	if err != nil {
		s.logger.Error("update note failed", zap.String("id", noteID), zap.Error(err))
		return err
	}
	return s.FetchNotes(ctx, groupID)
}

func (s *NoteStore) DeleteNote(ctx context.Context, groupID, noteID string) error {
	defer s.op.begin()()
	if _, err := s.auth.requireUser(); err != nil {
		s.logger.Error("delete note failed", zap.Error(err))
		return err
	}
	if err := s.backend.Delete(ctx, CollectionNotes, noteID); err != nil {
		s.logger.Error("delete note failed", zap.String("id", noteID), zap.Error(err))
		return err
	}
	return s.FetchNotes(ctx, groupID)
}

// FetchNotes loads the signed-in user's notes of one group, newest first.
func (s *NoteStore) FetchNotes(ctx context.Context, groupID string) error {
	defer s.op.begin()()
	user, err := s.auth.requireUser()
	if err != nil {
		s.logger.Error("fetch notes failed", zap.Error(err))
		return err
	}
	q := docstore.Collection(CollectionNotes).
		Where("groupId", docstore.Equal, groupID).
		Where("createdBy", docstore.Equal, user.ID).
		OrderBy("createdAt", docstore.Desc)
	docs, err := s.backend.Query(ctx, q)
	if err != nil {
		s.logger.Error("fetch notes failed", zap.String("group", groupID), zap.Error(err))
		return err
	}
	notes := decodeAll[Note](docs, s.logger)

	s.mu.Lock()
	s.notes[groupID] = notes
	s.mu.Unlock()
	s.bus.Emit(bus.KindStoreNotes, Change{GroupID: groupID})
	return nil
}

// Notes returns the fetched notes of a group, or an empty slice.
func (s *NoteStore) Notes(groupID string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.notes[groupID]; n != nil {
		return slices.Clone(n)
	}
	return []Note{}
}

func (s *NoteStore) Loading() bool {
	return s.op.active()
}

// FilterByDate keeps the notes created on the same calendar day as day,
// compared as "2006-01-02" strings in day's location.
func FilterByDate(notes []Note, day time.Time) []Note {
	want := day.Format(DateLayout)
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if time.UnixMilli(n.CreatedAt).In(day.Location()).Format(DateLayout) == want {
			out = append(out, n)
		}
	}
	return out
}

// ParseDay parses a "2006-01-02" day in the local timezone.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}
