package model

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/matheus3301/classnotes/internal/forms"
	"github.com/matheus3301/classnotes/internal/school"
	"github.com/matheus3301/classnotes/internal/stores"
)

// ViewModel caches school data for the views and holds the note date
// filter. Group, note and chat state lives in the stores.
type ViewModel struct {
	Stores *stores.Stores
	School *school.Client

	mu       sync.RWMutex
	classes  []school.Class
	class    *school.Class
	students []school.Student
	subjects []school.Subject
	noteDay  time.Time
	pending  int
}

func NewViewModel(st *stores.Stores, sc *school.Client) *ViewModel {
	return &ViewModel{Stores: st, School: sc}
}

// Loading reports whether any store or school request is in flight.
func (vm *ViewModel) Loading() bool {
	vm.mu.RLock()
	pending := vm.pending
	vm.mu.RUnlock()
	if pending > 0 {
		return true
	}
	st := vm.Stores
	return st.Auth.Loading() || st.Groups.Loading() || st.Notes.Loading() || st.Chat.Loading()
}

func (vm *ViewModel) begin() func() {
	vm.mu.Lock()
	vm.pending++
	vm.mu.Unlock()
	return func() {
		vm.mu.Lock()
		vm.pending--
		vm.mu.Unlock()
	}
}

// Login signs in to the school API. A false result with a nil error means
// the credentials were refused.
func (vm *ViewModel) Login(ctx context.Context, f forms.SchoolLogin) (bool, error) {
	if err := forms.Validate(&f); err != nil {
		return false, err
	}
	defer vm.begin()()
	return vm.School.Login(ctx, f.Email, f.Password)
}

func (vm *ViewModel) Logout() error {
	vm.mu.Lock()
	vm.classes, vm.class, vm.students, vm.subjects = nil, nil, nil, nil
	vm.mu.Unlock()
	return vm.School.Logout()
}

func (vm *ViewModel) LoggedIn() bool {
	ok, err := vm.School.IsLoggedIn()
	return err == nil && ok
}

func (vm *ViewModel) LoadClasses(ctx context.Context) error {
	defer vm.begin()()
	classes, err := vm.School.Classes(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.classes = classes
	vm.mu.Unlock()
	return nil
}

// LoadClass fetches one class and its students. A missing class clears
// the cached one.
func (vm *ViewModel) LoadClass(ctx context.Context, id int64) error {
	defer vm.begin()()
	class, err := vm.School.Class(ctx, id)
	var se *school.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		class, err = nil, nil
	}
	if err != nil {
		return err
	}
	var students []school.Student
	if class != nil {
		if students, err = vm.School.StudentsByClass(ctx, id); err != nil {
			return err
		}
	}
	vm.mu.Lock()
	vm.class = class
	vm.students = students
	vm.mu.Unlock()
	return nil
}

func (vm *ViewModel) LoadSubjects(ctx context.Context) error {
	defer vm.begin()()
	subjects, err := vm.School.Subjects(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.subjects = subjects
	vm.mu.Unlock()
	return nil
}

// SaveClass adds a class when id is 0 and updates it otherwise, then
// re-fetches the class list.
func (vm *ViewModel) SaveClass(ctx context.Context, id int64, f forms.Class) error {
	if err := forms.Validate(&f); err != nil {
		return err
	}
	err := vm.withPending(func() error {
		if id == 0 {
			return vm.School.AddClass(ctx, f.Name, f.Count())
		}
		return vm.School.UpdateClass(ctx, id, f.Name, f.Count())
	})
	if err != nil {
		return err
	}
	return vm.LoadClasses(ctx)
}

func (vm *ViewModel) DeleteClass(ctx context.Context, id int64) error {
	if err := vm.withPending(func() error { return vm.School.DeleteClass(ctx, id) }); err != nil {
		return err
	}
	return vm.LoadClasses(ctx)
}

// SaveStudent adds or updates a student of classID, then re-fetches the class.
func (vm *ViewModel) SaveStudent(ctx context.Context, id, classID int64, f forms.Student) error {
	if err := forms.Validate(&f); err != nil {
		return err
	}
	err := vm.withPending(func() error {
		if id == 0 {
			return vm.School.AddStudent(ctx, classID, f.LastName, f.FirstName, f.BirthDate)
		}
		return vm.School.UpdateStudent(ctx, id, classID, f.LastName, f.FirstName, f.BirthDate)
	})
	if err != nil {
		return err
	}
	return vm.LoadClass(ctx, classID)
}

func (vm *ViewModel) DeleteStudent(ctx context.Context, id, classID int64) error {
	if err := vm.withPending(func() error { return vm.School.DeleteStudent(ctx, id) }); err != nil {
		return err
	}
	return vm.LoadClass(ctx, classID)
}

// SaveSubject adds or updates a subject, then re-fetches the subject list.
func (vm *ViewModel) SaveSubject(ctx context.Context, id int64, f forms.Subject) error {
	if err := forms.Validate(&f); err != nil {
		return err
	}
	err := vm.withPending(func() error {
		if id == 0 {
			return vm.School.AddSubject(ctx, f.Title, f.Description)
		}
		return vm.School.UpdateSubject(ctx, id, f.Title, f.Description)
	})
	if err != nil {
		return err
	}
	return vm.LoadSubjects(ctx)
}

func (vm *ViewModel) DeleteSubject(ctx context.Context, id int64) error {
	if err := vm.withPending(func() error { return vm.School.DeleteSubject(ctx, id) }); err != nil {
		return err
	}
	return vm.LoadSubjects(ctx)
}

// LinkSubject attaches a subject to a class and re-fetches the class.
func (vm *ViewModel) LinkSubject(ctx context.Context, classID, subjectID int64) error {
	if err := vm.withPending(func() error { return vm.School.AddSubjectToClass(ctx, classID, subjectID) }); err != nil {
		return err
	}
	return vm.LoadClass(ctx, classID)
}

func (vm *ViewModel) UnlinkSubject(ctx context.Context, classID, subjectID int64) error {
	if err := vm.withPending(func() error { return vm.School.RemoveSubjectFromClass(ctx, classID, subjectID) }); err != nil {
		return err
	}
	return vm.LoadClass(ctx, classID)
}

func (vm *ViewModel) withPending(fn func() error) error {
	defer vm.begin()()
	return fn()
}

// SetNoteDay sets the note date filter from YYYY-MM-DD. An empty string
// clears it.
func (vm *ViewModel) SetNoteDay(s string) error {
	var day time.Time
	if s != "" {
		d, err := stores.ParseDay(s)
		if err != nil {
			return err
		}
		day = d
	}
	vm.mu.Lock()
	vm.noteDay = day
	vm.mu.Unlock()
	return nil
}

// NoteDay returns the active filter day, zero when unfiltered.
func (vm *ViewModel) NoteDay() time.Time {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.noteDay
}

// Notes returns the fetched notes of groupID, narrowed to the filter day.
func (vm *ViewModel) Notes(groupID string) []stores.Note {
	notes := vm.Stores.Notes.Notes(groupID)
	if day := vm.NoteDay(); !day.IsZero() {
		return stores.FilterByDate(notes, day)
	}
	return notes
}

func (vm *ViewModel) Classes() []school.Class {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.classes
}

// Class returns the class loaded by LoadClass, or nil.
func (vm *ViewModel) Class() *school.Class {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.class
}

func (vm *ViewModel) Students() []school.Student {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.students
}

func (vm *ViewModel) Subjects() []school.Subject {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.subjects
}
