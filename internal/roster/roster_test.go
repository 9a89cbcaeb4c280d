package roster

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/matheus3301/classnotes/internal/school"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		ref, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

type added struct {
	class                  int64
	last, first, birthDate string
}

type fakeAdder struct {
	added []added
	fail  string
}

func (f *fakeAdder) AddStudent(_ context.Context, classID int64, last, first, birth string) error {
	if last == f.fail {
		return errors.New("backend refused")
	}
	f.added = append(f.added, added{classID, last, first, birth})
	return nil
}

func TestReadStudents(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Nom", "Prénom", "Date de naissance"},
		{"Ben", "Ali", "2001-03-04"},
		{"Durand", "", "2001-03-04"},
		{"", "", ""},
		{"Martin", "Léa", "15/09/2002"},
		{"Petit", "Tom", "soon"},
	})
	rows, skipped, err := ReadStudents(buf)
	if err != nil {
		t.Fatalf("ReadStudents() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2", rows)
	}
	if rows[1].LastName != "Martin" || rows[1].BirthDate != "2002-09-15" || rows[1].Line != 5 {
		t.Errorf("rows[1] = %+v", rows[1])
	}
	if len(skipped) != 2 || skipped[0].Line != 3 || skipped[1].Line != 6 {
		t.Errorf("skipped = %+v, want lines 3 and 6", skipped)
	}
}

func TestReadStudentsNotASpreadsheet(t *testing.T) {
	if _, _, err := ReadStudents(bytes.NewBufferString("nom,prenom\n")); err == nil {
		t.Error("ReadStudents() accepted CSV input")
	}
}

func TestImportStudents(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Nom", "Prénom", "Date de naissance"},
		{"Ben", "Ali", "2001-03-04"},
		{"Refused", "Bob", "2001-03-04"},
		{"Martin", "Léa", "2002-09-15"},
	})
	adder := &fakeAdder{fail: "Refused"}
	res, err := ImportStudents(context.Background(), buf, 7, adder, zap.NewNop())
	if err != nil {
		t.Fatalf("ImportStudents() error = %v", err)
	}
	if res.Imported != 2 || len(res.Skipped) != 1 || res.Skipped[0].Line != 3 {
		t.Errorf("result = %+v", res)
	}
	if adder.added[0] != (added{7, "Ben", "Ali", "2001-03-04"}) {
		t.Errorf("first add = %+v", adder.added[0])
	}
}

func TestExportClass(t *testing.T) {
	class := school.Class{ID: 3, Name: "L2", Subjects: []school.Subject{{ID: 9, Title: "Maths", Description: "Analyse"}}}
	students := []school.Student{{ID: 1, ClassID: 3, LastName: "Ben", FirstName: "Ali", BirthDate: "2001-03-04"}}

	var buf bytes.Buffer
	if err := ExportClass(&buf, class, students); err != nil {
		t.Fatalf("ExportClass() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != StudentsSheet || got[1] != SubjectsSheet {
		t.Fatalf("sheets = %v", got)
	}
	rows, err := f.GetRows(StudentsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][1] != "Ben" || rows[1][3] != "2001-03-04" {
		t.Errorf("Students rows = %v", rows)
	}
	subjects, err := f.GetRows(SubjectsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(subjects) != 2 || subjects[1][1] != "Maths" {
		t.Errorf("Subjects rows = %v", subjects)
	}
}
