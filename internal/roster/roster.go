// Package roster moves class rosters in and out of xlsx spreadsheets.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matheus3301/classnotes/internal/school"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	StudentsSheet = "Students"
	SubjectsSheet = "Subjects"
)

var studentHeader = []any{"ID", "Nom", "Prénom", "Date de naissance"}
var subjectHeader = []any{"Code", "Intitulé", "Description"}

// dateLayouts are the accepted birth date formats, tried in order.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "01-02-06", "2006/01/02"}

// Row is one student line of an import sheet.
type Row struct {
	Line      int
	LastName  string
	FirstName string
	BirthDate string
}

// Skip records a line that was not imported.
type Skip struct {
	Line   int
	Reason string
}

// Result summarizes an import.
type Result struct {
	Imported int
	Skipped  []Skip
}

// StudentAdder is the part of the school client an import needs.
type StudentAdder interface {
	AddStudent(ctx context.Context, classID int64, lastName, firstName, birthDate string) error
}

// ReadStudents reads the first sheet. The header row is skipped; columns
// are Nom, Prénom, Date de naissance. Incomplete lines are reported.
func ReadStudents(r io.Reader) ([]Row, []Skip, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errors.New("spreadsheet has no sheets")
	}
	lines, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	var rows []Row
	var skipped []Skip
	for i, line := range lines {
		if i == 0 {
			continue
		}
		row := Row{Line: i + 1, LastName: cell(line, 0), FirstName: cell(line, 1)}
		if row.LastName == "" && row.FirstName == "" && cell(line, 2) == "" {
			continue
		}
		if row.LastName == "" || row.FirstName == "" {
			skipped = append(skipped, Skip{Line: row.Line, Reason: "missing name"})
			continue
		}
		birth, ok := normalizeDate(cell(line, 2))
		if !ok {
			skipped = append(skipped, Skip{Line: row.Line, Reason: fmt.Sprintf("invalid birth date %q", cell(line, 2))})
			continue
		}
		row.BirthDate = birth
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// ImportStudents adds every valid line of the spreadsheet to classID.
// A failed add is recorded as a skip and the import goes on.
func ImportStudents(ctx context.Context, r io.Reader, classID int64, adder StudentAdder, logger *zap.Logger) (*Result, error) {
	rows, skipped, err := ReadStudents(r)
	if err != nil {
		return nil, err
	}
	res := &Result{Skipped: skipped}
	for _, row := range rows {
		if err := adder.AddStudent(ctx, classID, row.LastName, row.FirstName, row.BirthDate); err != nil {
			logger.Warn("import student failed", zap.Int("line", row.Line), zap.Error(err))
			res.Skipped = append(res.Skipped, Skip{Line: row.Line, Reason: err.Error()})
			continue
		}
		res.Imported++
	}
	logger.Info("roster imported",
		zap.Int64("class", classID),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// ExportClass writes a workbook with a Students and a Subjects sheet.
func ExportClass(w io.Writer, class school.Class, students []school.Student) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), StudentsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(SubjectsSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(StudentsSheet, "A1", &studentHeader); err != nil {
		return err
	}
	for i, s := range students {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{s.ID, s.LastName, s.FirstName, s.BirthDate}
		if err := f.SetSheetRow(StudentsSheet, cellRef, &row); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(SubjectsSheet, "A1", &subjectHeader); err != nil {
		return err
	}
	for i, s := range class.Subjects {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{s.ID, s.Title, s.Description}
		if err := f.SetSheetRow(SubjectsSheet, cellRef, &row); err != nil {
			return err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: class.Name, Creator: "classnotes"}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func cell(line []string, i int) string {
	if i < len(line) {
		return strings.TrimSpace(line[i])
	}
	return ""
}

func normalizeDate(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
