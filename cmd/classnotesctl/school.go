package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/matheus3301/classnotes/internal/forms"
	"github.com/matheus3301/classnotes/internal/roster"
	"github.com/matheus3301/classnotes/internal/school"
	"github.com/matheus3301/classnotes/internal/session"
)

func schoolClient(e *env) *school.Client {
	return school.New(e.cfg.SchoolURL,
		school.WithTimeout(e.cfg.HTTPTimeout()),
		school.WithLoginFlag(session.NewLoginFlag(e.session)),
		school.WithLogger(e.logger),
	)
}

// loggedIn returns a client or exits when the session has no REST login.
func loggedIn(e *env) *school.Client {
	c := schoolClient(e)
	ok, err := c.IsLoggedIn()
	if err != nil {
		fail(err)
	}
	if !ok {
		fail(fmt.Errorf("not logged in to %s: run classnotesctl login", e.cfg.SchoolURL))
	}
	return c
}

func parseID(s, what string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		fail(fmt.Errorf("invalid %s id %q", what, s))
	}
	return id
}

func cmdSchoolAuth(ctx context.Context, e *env, name string, args []string) {
	c := schoolClient(e)
	switch name {
	case "login":
		need(args, 2, "login <email> <password>")
		form := forms.SchoolLogin{Email: args[0], Password: args[1]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		ok, err := c.Login(ctx, form.Email, form.Password)
		if err != nil {
			fail(err)
		}
		if !ok {
			fail(fmt.Errorf("invalid email or password"))
		}
		fmt.Println("Logged in.")
	case "logout":
		if err := c.Logout(); err != nil {
			fail(err)
		}
		fmt.Println("Logged out.")
	case "status":
		ok, err := c.IsLoggedIn()
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(map[string]any{"school_url": e.cfg.SchoolURL, "logged_in": ok})
			return
		}
		fmt.Printf("School:    %s\n", e.cfg.SchoolURL)
		fmt.Printf("Logged in: %v\n", ok)
	}
}

func cmdClasses(ctx context.Context, e *env, name string, args []string) {
	c := loggedIn(e)
	switch name {
	case "list":
		classes, err := c.Classes(ctx)
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(classes)
			return
		}
		if len(classes) == 0 {
			fmt.Println("No classes found.")
			return
		}
		for _, cl := range classes {
			fmt.Printf("%-6d %-30s %3d students  %d subjects\n", cl.ID, cl.Name, cl.StudentCount, len(cl.Subjects))
		}
	case "show":
		need(args, 1, "classes show <id>")
		id := parseID(args[0], "class")
		class, err := c.Class(ctx, id)
		if err != nil {
			fail(err)
		}
		if class == nil {
			fail(fmt.Errorf("class %d not found", id))
		}
		students, err := c.StudentsByClass(ctx, id)
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(map[string]any{"class": class, "students": students})
			return
		}
		fmt.Printf("Class:    %s (%d)\n", class.Name, class.ID)
		fmt.Printf("Size:     %d\n", class.StudentCount)
		fmt.Println("Subjects:")
		for _, s := range class.Subjects {
			fmt.Printf("  %-6d %s\n", s.ID, s.Title)
		}
		fmt.Println("Students:")
		for _, s := range students {
			fmt.Printf("  %-6d %-30s %s\n", s.ID, s.FullName(), s.BirthDate)
		}
	case "add":
		need(args, 2, "classes add <name> <count>")
		form := forms.Class{Name: args[0], StudentCount: args[1]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := c.AddClass(ctx, form.Name, form.Count()); err != nil {
			fail(err)
		}
		fmt.Println("Class added.")
	case "edit":
		need(args, 3, "classes edit <id> <name> <count>")
		id := parseID(args[0], "class")
		form := forms.Class{Name: args[1], StudentCount: args[2]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := c.UpdateClass(ctx, id, form.Name, form.Count()); err != nil {
			fail(err)
		}
		fmt.Println("Class updated.")
	case "delete":
		need(args, 1, "classes delete <id>")
		if err := c.DeleteClass(ctx, parseID(args[0], "class")); err != nil {
			fail(err)
		}
		fmt.Println("Class deleted.")
	case "export":
		need(args, 2, "classes export <id> <file.xlsx>")
		id := parseID(args[0], "class")
		class, err := c.Class(ctx, id)
		if err != nil {
			fail(err)
		}
		if class == nil {
			fail(fmt.Errorf("class %d not found", id))
		}
		students, err := c.StudentsByClass(ctx, id)
		if err != nil {
			fail(err)
		}
		f, err := os.Create(args[1])
		if err != nil {
			fail(err)
		}
		if err := roster.ExportClass(f, *class, students); err != nil {
			_ = f.Close()
			fail(err)
		}
		if err := f.Close(); err != nil {
			fail(err)
		}
		fmt.Printf("Exported %d students to %s\n", len(students), args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown classes subcommand: %s\n", name)
		os.Exit(1)
	}
}

func cmdStudents(ctx context.Context, e *env, name string, args []string) {
	c := loggedIn(e)
	switch name {
	case "list":
		need(args, 1, "students list <class>")
		students, err := c.StudentsByClass(ctx, parseID(args[0], "class"))
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(students)
			return
		}
		if len(students) == 0 {
			fmt.Println("No students found.")
			return
		}
		for _, s := range students {
			fmt.Printf("%-6d %-30s %s\n", s.ID, s.FullName(), s.BirthDate)
		}
	case "add":
		need(args, 4, "students add <class> <last> <first> <YYYY-MM-DD>")
		classID := parseID(args[0], "class")
		form := forms.Student{LastName: args[1], FirstName: args[2], BirthDate: args[3]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := c.AddStudent(ctx, classID, form.LastName, form.FirstName, form.BirthDate); err != nil {
			fail(err)
		}
		fmt.Println("Student added.")
	case "edit":
		need(args, 5, "students edit <id> <class> <last> <first> <YYYY-MM-DD>")
		id := parseID(args[0], "student")
		classID := parseID(args[1], "class")
		form := forms.Student{LastName: args[2], FirstName: args[3], BirthDate: args[4]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := c.UpdateStudent(ctx, id, classID, form.LastName, form.FirstName, form.BirthDate); err != nil {
			fail(err)
		}
		fmt.Println("Student updated.")
	case "delete":
		need(args, 1, "students delete <id>")
		if err := c.DeleteStudent(ctx, parseID(args[0], "student")); err != nil {
			fail(err)
		}
		fmt.Println("Student deleted.")
	case "import":
		need(args, 2, "students import <class> <file.xlsx>")
		classID := parseID(args[0], "class")
		f, err := os.Open(args[1])
		if err != nil {
			fail(err)
		}
		defer func() { _ = f.Close() }()
		res, err := roster.ImportStudents(ctx, f, classID, c, e.logger)
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(res)
			return
		}
		fmt.Printf("Imported %d students.\n", res.Imported)
		for _, s := range res.Skipped {
			fmt.Printf("  skipped line %d: %s\n", s.Line, s.Reason)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown students subcommand: %s\n", name)
		os.Exit(1)
	}
}

func cmdSubjects(ctx context.Context, e *env, name string, args []string) {
	c := loggedIn(e)
	switch name {
	case "list":
		subjects, err := c.Subjects(ctx)
		if err != nil {
			fail(err)
		}
		if e.jsonOut {
			outputJSON(subjects)
			return
		}
		if len(subjects) == 0 {
			fmt.Println("No subjects found.")
			return
		}
		for _, s := range subjects {
			fmt.Printf("%-6d %-30s %s\n", s.ID, s.Title, s.Description)
		}
	case "add":
		need(args, 2, "subjects add <title> <description>")
		form := forms.Subject{Title: args[0], Description: args[1]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := c.AddSubject(ctx, form.Title, form.Description); err != nil {
			fail(err)
		}
		fmt.Println("Subject added.")
	case "edit":
		need(args, 3, "subjects edit <id> <title> <description>")
		id := parseID(args[0], "subject")
		form := forms.Subject{Title: args[1], Description: args[2]}
		if err := forms.Validate(&form); err != nil {
			fail(err)
		}
		if err := c.UpdateSubject(ctx, id, form.Title, form.Description); err != nil {
			fail(err)
		}
		fmt.Println("Subject updated.")
	case "delete":
		need(args, 1, "subjects delete <id>")
		if err := c.DeleteSubject(ctx, parseID(args[0], "subject")); err != nil {
			fail(err)
		}
		fmt.Println("Subject deleted.")
	case "link":
		need(args, 2, "subjects link <class> <subject>")
		if err := c.AddSubjectToClass(ctx, parseID(args[0], "class"), parseID(args[1], "subject")); err != nil {
			fail(err)
		}
		fmt.Println("Subject linked.")
	case "unlink":
		need(args, 2, "subjects unlink <class> <subject>")
		if err := c.RemoveSubjectFromClass(ctx, parseID(args[0], "class"), parseID(args[1], "subject")); err != nil {
			fail(err)
		}
		fmt.Println("Subject unlinked.")
	default:
		fmt.Fprintf(os.Stderr, "unknown subjects subcommand: %s\n", name)
		os.Exit(1)
	}
}
