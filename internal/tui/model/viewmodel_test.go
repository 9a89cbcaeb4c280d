package model

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docserver"
	"github.com/matheus3301/classnotes/internal/forms"
	"github.com/matheus3301/classnotes/internal/school"
	"github.com/matheus3301/classnotes/internal/schoolapi"
	"github.com/matheus3301/classnotes/internal/store"
	"github.com/matheus3301/classnotes/internal/stores"
	"go.uber.org/zap"
)

type memFlag struct{ v bool }

func (f *memFlag) SetLoggedIn(v bool) error { f.v = v; return nil }
func (f *memFlag) LoggedIn() (bool, error)  { return f.v, nil }

func newTestViewModel(t *testing.T) (*ViewModel, *schoolapi.Accounts) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	local := docserver.NewLocal(
		docserver.NewEngine(db, b, zap.NewNop()),
		docserver.NewAccounts(db, []byte("test-secret"), time.Hour),
	)
	st := stores.New(local, local, b, zap.NewNop())
	t.Cleanup(st.Auth.Initialize(context.Background()))

	repo := schoolapi.NewMemoryRepository()
	accounts := schoolapi.NewAccounts(repo)
	srv := httptest.NewServer(schoolapi.NewHandler(repo, accounts, zap.NewNop()))
	t.Cleanup(srv.Close)
	sc := school.New(srv.URL, school.WithHTTPClient(srv.Client()), school.WithLoginFlag(&memFlag{}))

	return NewViewModel(st, sc), accounts
}

func TestSchoolLogin(t *testing.T) {
	vm, accounts := newTestViewModel(t)
	ctx := context.Background()
	if _, err := accounts.AddUser(ctx, "prof@school.test", "secret1"); err != nil {
		t.Fatal(err)
	}

	if _, err := vm.Login(ctx, forms.SchoolLogin{Email: "prof", Password: "secret1"}); err == nil {
		t.Error("Login() accepted an invalid email")
	}
	if ok, err := vm.Login(ctx, forms.SchoolLogin{Email: "prof@school.test", Password: "wrong1"}); err != nil || ok {
		t.Errorf("Login(wrong) = %v, %v", ok, err)
	}
	// Three characters pass validation and reach the backend.
	if ok, err := vm.Login(ctx, forms.SchoolLogin{Email: "prof@school.test", Password: "abc"}); err != nil || ok {
		t.Errorf("Login(abc) = %v, %v, want a rejected attempt", ok, err)
	}
	if ok, err := vm.Login(ctx, forms.SchoolLogin{Email: "prof@school.test", Password: "secret1"}); err != nil || !ok {
		t.Fatalf("Login() = %v, %v", ok, err)
	}
	if !vm.LoggedIn() {
		t.Error("LoggedIn() = false after Login")
	}
	if err := vm.Logout(); err != nil || vm.LoggedIn() {
		t.Errorf("Logout() = %v, LoggedIn() = %v", err, vm.LoggedIn())
	}
}

func TestClassLifecycle(t *testing.T) {
	vm, _ := newTestViewModel(t)
	ctx := context.Background()

	if err := vm.SaveClass(ctx, 0, forms.Class{Name: "L3 Info", StudentCount: "-2"}); err == nil {
		t.Error("SaveClass() accepted a negative count")
	}
	if err := vm.SaveClass(ctx, 0, forms.Class{Name: "L3 Info", StudentCount: "28"}); err != nil {
		t.Fatalf("SaveClass() error = %v", err)
	}
	classes := vm.Classes()
	if len(classes) != 1 || classes[0].Name != "L3 Info" || classes[0].StudentCount != 28 {
		t.Fatalf("Classes() = %+v", classes)
	}
	id := classes[0].ID

	if err := vm.SaveClass(ctx, id, forms.Class{Name: "L3 Informatique", StudentCount: "30"}); err != nil {
		t.Fatal(err)
	}
	if got := vm.Classes()[0].Name; got != "L3 Informatique" {
		t.Errorf("renamed class = %q", got)
	}

	if err := vm.SaveStudent(ctx, 0, id, forms.Student{LastName: "Diallo", FirstName: "Awa", BirthDate: "2002-03-14"}); err != nil {
		t.Fatalf("SaveStudent() error = %v", err)
	}
	if err := vm.SaveStudent(ctx, 0, id, forms.Student{LastName: "Ndiaye", FirstName: "", BirthDate: "2002-03-14"}); err == nil {
		t.Error("SaveStudent() accepted a blank first name")
	}
	if got := vm.Students(); len(got) != 1 || got[0].FullName() != "Awa Diallo" {
		t.Fatalf("Students() = %+v", got)
	}
	if vm.Class() == nil || vm.Class().ID != id {
		t.Fatalf("Class() = %+v, want class %d", vm.Class(), id)
	}

	if err := vm.SaveSubject(ctx, 0, forms.Subject{Title: "Algorithms", Description: "Graphs and trees"}); err != nil {
		t.Fatal(err)
	}
	subjectID := vm.Subjects()[0].ID
	if err := vm.LinkSubject(ctx, id, subjectID); err != nil {
		t.Fatalf("LinkSubject() error = %v", err)
	}
	if got := vm.Class().Subjects; len(got) != 1 || got[0].Title != "Algorithms" {
		t.Errorf("class subjects = %+v", got)
	}
	if err := vm.UnlinkSubject(ctx, id, subjectID); err != nil {
		t.Fatal(err)
	}
	if got := vm.Class().Subjects; len(got) != 0 {
		t.Errorf("class subjects after unlink = %+v", got)
	}

	if err := vm.DeleteClass(ctx, id); err != nil {
		t.Fatal(err)
	}
	if len(vm.Classes()) != 0 {
		t.Errorf("Classes() after delete = %+v", vm.Classes())
	}
	if err := vm.LoadClass(ctx, id); err != nil {
		t.Fatal(err)
	}
	if vm.Class() != nil || vm.Students() != nil {
		t.Error("LoadClass() of a deleted class kept stale data")
	}
	if vm.Loading() {
		t.Error("Loading() = true with nothing in flight")
	}
}

func TestNoteDayFilter(t *testing.T) {
	vm, _ := newTestViewModel(t)
	ctx := context.Background()
	if err := vm.Stores.Auth.SignUp(ctx, "ana@school.test", "secret1", "ana"); err != nil {
		t.Fatal(err)
	}
	groupID, err := vm.Stores.Groups.CreateGroup(ctx, "Bio")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := vm.Stores.Notes.CreateNote(ctx, groupID, "Reminder", "Bring slides"); err != nil {
		t.Fatal(err)
	}

	if got := vm.Notes(groupID); len(got) != 1 {
		t.Fatalf("Notes() unfiltered = %d, want 1", len(got))
	}
	if err := vm.SetNoteDay(time.Now().Format(stores.DateLayout)); err != nil {
		t.Fatal(err)
	}
	if got := vm.Notes(groupID); len(got) != 1 {
		t.Errorf("Notes() for today = %d, want 1", len(got))
	}
	if err := vm.SetNoteDay("2001-01-01"); err != nil {
		t.Fatal(err)
	}
	if got := vm.Notes(groupID); len(got) != 0 {
		t.Errorf("Notes() for 2001-01-01 = %d, want 0", len(got))
	}
	if err := vm.SetNoteDay("yesterday"); err == nil {
		t.Error("SetNoteDay() accepted a non-date")
	}
	if err := vm.SetNoteDay(""); err != nil || !vm.NoteDay().IsZero() {
		t.Errorf("SetNoteDay(\"\") = %v, day = %v", err, vm.NoteDay())
	}
}
