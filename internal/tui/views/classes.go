package views

import (
	"fmt"
	"strconv"

	"github.com/matheus3301/classnotes/internal/school"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// ClassList is the table of classes from the school API.
type ClassList struct {
	*tview.Table
	static
	theme   *ui.Theme
	classes []school.Class
}

func NewClassList(theme *ui.Theme) *ClassList {
	return &ClassList{Table: newTable(theme, " Classes "), theme: theme}
}

func (cl *ClassList) Name() string { return "Classes" }

func (cl *ClassList) Hints() []ui.MenuHint { return nil }

func (cl *ClassList) Update(classes []school.Class) {
	cl.classes = classes
	resetTable(cl.Table, cl.theme, column{"ID", 0}, column{"NAME", 2}, column{"STUDENTS", 0}, column{"SUBJECTS", 0})
	for i, c := range classes {
		setRow(cl.Table, cl.theme, i+1, strconv.FormatInt(c.ID, 10), c.Name,
			strconv.Itoa(c.StudentCount), strconv.Itoa(len(c.Subjects)))
	}
	keepSelection(cl.Table, len(classes))
	cl.SetTitle(fmt.Sprintf(" Classes (%d) ", len(classes)))
}

func (cl *ClassList) Selected() (school.Class, bool) {
	if i := selectedIndex(cl.Table, len(cl.classes)); i >= 0 {
		return cl.classes[i], true
	}
	return school.Class{}, false
}

// ClassDetail shows one class: its students and its subjects side by side.
type ClassDetail struct {
	*tview.Flex
	static
	theme    *ui.Theme
	students *tview.Table
	subjects *tview.Table
	class    school.Class
	roster   []school.Student
}

func NewClassDetail(theme *ui.Theme) *ClassDetail {
	students := newTable(theme, " Students ")
	subjects := newTable(theme, " Subjects ")
	return &ClassDetail{
		Flex: tview.NewFlex().
			AddItem(students, 0, 3, true).
			AddItem(subjects, 0, 2, false),
		theme:    theme,
		students: students,
		subjects: subjects,
	}
}

func (cd *ClassDetail) Name() string { return cd.class.Name }

func (cd *ClassDetail) Hints() []ui.MenuHint { return nil }

// Update renders class and its students.
func (cd *ClassDetail) Update(class school.Class, students []school.Student) {
	cd.class = class
	cd.roster = students

	resetTable(cd.students, cd.theme, column{"ID", 0}, column{"LAST NAME", 1}, column{"FIRST NAME", 1}, column{"BORN", 0})
	for i, s := range students {
		setRow(cd.students, cd.theme, i+1, strconv.FormatInt(s.ID, 10), s.LastName, s.FirstName, s.BirthDate)
	}
	keepSelection(cd.students, len(students))
	cd.students.SetTitle(fmt.Sprintf(" %s: students (%d/%d) ", tview.Escape(class.Name), len(students), class.StudentCount))

	resetTable(cd.subjects, cd.theme, column{"ID", 0}, column{"TITLE", 1})
	for i, s := range class.Subjects {
		setRow(cd.subjects, cd.theme, i+1, strconv.FormatInt(s.ID, 10), s.Title)
	}
	keepSelection(cd.subjects, len(class.Subjects))
	cd.subjects.SetTitle(fmt.Sprintf(" Subjects (%d) ", len(class.Subjects)))
}

// Class returns the class shown.
func (cd *ClassDetail) Class() school.Class { return cd.class }

func (cd *ClassDetail) SelectedStudent() (school.Student, bool) {
	if i := selectedIndex(cd.students, len(cd.roster)); i >= 0 {
		return cd.roster[i], true
	}
	return school.Student{}, false
}

func (cd *ClassDetail) SelectedSubject() (school.Subject, bool) {
	if i := selectedIndex(cd.subjects, len(cd.class.Subjects)); i >= 0 {
		return cd.class.Subjects[i], true
	}
	return school.Subject{}, false
}

// Students and Subjects return the two tables for focus management.
func (cd *ClassDetail) Students() *tview.Table { return cd.students }

func (cd *ClassDetail) Subjects() *tview.Table { return cd.subjects }

// SubjectList is the table of all subjects.
type SubjectList struct {
	*tview.Table
	static
	theme    *ui.Theme
	subjects []school.Subject
}

func NewSubjectList(theme *ui.Theme) *SubjectList {
	return &SubjectList{Table: newTable(theme, " Subjects "), theme: theme}
}

func (sl *SubjectList) Name() string { return "Subjects" }

func (sl *SubjectList) Hints() []ui.MenuHint { return nil }

func (sl *SubjectList) Update(subjects []school.Subject) {
	sl.subjects = subjects
	resetTable(sl.Table, sl.theme, column{"ID", 0}, column{"TITLE", 1}, column{"DESCRIPTION", 3})
	for i, s := range subjects {
		setRow(sl.Table, sl.theme, i+1, strconv.FormatInt(s.ID, 10), s.Title, oneLine(s.Description, 80))
	}
	keepSelection(sl.Table, len(subjects))
	sl.SetTitle(fmt.Sprintf(" Subjects (%d) ", len(subjects)))
}

func (sl *SubjectList) Selected() (school.Subject, bool) {
	if i := selectedIndex(sl.Table, len(sl.subjects)); i >= 0 {
		return sl.subjects[i], true
	}
	return school.Subject{}, false
}
