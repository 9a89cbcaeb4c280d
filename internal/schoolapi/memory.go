package schoolapi

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/classnotes/internal/school"
)

type link struct{ class, subject int64 }

// MemoryRepository keeps everything in process memory. Used for local
// development (SCHOOL_STORAGE=memory) and tests.
type MemoryRepository struct {
	mu       sync.Mutex
	seq      int64
	classes  map[int64]school.Class
	students map[int64]school.Student
	subjects map[int64]school.Subject
	links    map[link]struct{}
	accounts map[string]Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		classes:  make(map[int64]school.Class),
		students: make(map[int64]school.Student),
		subjects: make(map[int64]school.Subject),
		links:    make(map[link]struct{}),
		accounts: make(map[string]Account),
	}
}

func (m *MemoryRepository) next() int64 {
	m.seq++
	return m.seq
}

// withSubjects must be called with m.mu held.
func (m *MemoryRepository) withSubjects(c school.Class) school.Class {
	c.Subjects = nil
	for l := range m.links {
		if l.class == c.ID {
			c.Subjects = append(c.Subjects, m.subjects[l.subject])
		}
	}
	slices.SortFunc(c.Subjects, func(a, b school.Subject) int { return cmp.Compare(a.ID, b.ID) })
	return c
}

func (m *MemoryRepository) Classes(_ context.Context) ([]school.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]school.Class, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, m.withSubjects(c))
	}
	slices.SortFunc(out, func(a, b school.Class) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryRepository) Class(_ context.Context, id int64) (*school.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = m.withSubjects(c)
	return &c, nil
}

func (m *MemoryRepository) CreateClass(_ context.Context, c school.Class) (*school.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.next()
	c.Subjects = nil
	m.classes[c.ID] = c
	return &c, nil
}

func (m *MemoryRepository) UpdateClass(_ context.Context, c school.Class) (*school.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[c.ID]; !ok {
		return nil, ErrNotFound
	}
	c.Subjects = nil
	m.classes[c.ID] = c
	c = m.withSubjects(c)
	return &c, nil
}

func (m *MemoryRepository) DeleteClass(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[id]; !ok {
		return ErrNotFound
	}
	delete(m.classes, id)
	for sid, s := range m.students {
		if s.ClassID == id {
			delete(m.students, sid)
		}
	}
	for l := range m.links {
		if l.class == id {
			delete(m.links, l)
		}
	}
	return nil
}

func (m *MemoryRepository) StudentsByClass(_ context.Context, classID int64) ([]school.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []school.Student{}
	for _, s := range m.students {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b school.Student) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryRepository) CreateStudent(_ context.Context, s school.Student) (*school.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[s.ClassID]; !ok {
		return nil, ErrNotFound
	}
	s.ID = m.next()
	m.students[s.ID] = s
	return &s, nil
}

func (m *MemoryRepository) UpdateStudent(_ context.Context, s school.Student) (*school.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[s.ID]; !ok {
		return nil, ErrNotFound
	}
	if _, ok := m.classes[s.ClassID]; !ok {
		return nil, ErrNotFound
	}
	m.students[s.ID] = s
	return &s, nil
}

func (m *MemoryRepository) DeleteStudent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return ErrNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *MemoryRepository) Subjects(_ context.Context) ([]school.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]school.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b school.Subject) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryRepository) CreateSubject(_ context.Context, s school.Subject) (*school.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.next()
	m.subjects[s.ID] = s
	return &s, nil
}

func (m *MemoryRepository) UpdateSubject(_ context.Context, s school.Subject) (*school.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subjects[s.ID]; !ok {
		return nil, ErrNotFound
	}
	m.subjects[s.ID] = s
	return &s, nil
}

func (m *MemoryRepository) DeleteSubject(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subjects[id]; !ok {
		return ErrNotFound
	}
	delete(m.subjects, id)
	for l := range m.links {
		if l.subject == id {
			delete(m.links, l)
		}
	}
	return nil
}

func (m *MemoryRepository) LinkSubject(_ context.Context, classID, subjectID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[classID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.subjects[subjectID]; !ok {
		return ErrNotFound
	}
	m.links[link{classID, subjectID}] = struct{}{}
	return nil
}

func (m *MemoryRepository) UnlinkSubject(_ context.Context, classID, subjectID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := link{classID, subjectID}
	if _, ok := m.links[l]; !ok {
		return ErrNotFound
	}
	delete(m.links, l)
	return nil
}

func (m *MemoryRepository) AccountByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryRepository) CreateAccount(_ context.Context, email string, hash []byte) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := m.accounts[key]; ok {
		return nil, ErrEmailTaken
	}
	a := Account{ID: m.next(), Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.accounts[key] = a
	return &a, nil
}

func (m *MemoryRepository) Close() {}
