package views

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

type column struct {
	title     string
	expansion int
}

func newTable(theme *ui.Theme, title string) *tview.Table {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(title)
	table.SetTitleColor(theme.TitleColor)
	return table
}

// resetTable clears t and writes the header row.
func resetTable(t *tview.Table, theme *ui.Theme, cols ...column) {
	t.Clear()
	for i, c := range cols {
		t.SetCell(0, i, tview.NewTableCell(" "+c.title).
			SetSelectable(false).
			SetTextColor(theme.TableHeaderFg).
			SetBackgroundColor(theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(c.expansion))
	}
}

func setRow(t *tview.Table, theme *ui.Theme, row int, values ...string) {
	for i, v := range values {
		t.SetCell(row, i, tview.NewTableCell(" "+clean(v)).SetTextColor(theme.FgColor))
	}
}

// selectedIndex maps the table cursor to an index into n data rows, or -1.
func selectedIndex(t *tview.Table, n int) int {
	row, _ := t.GetSelection()
	if idx := row - 1; idx >= 0 && idx < n {
		return idx
	}
	return -1
}

// keepSelection moves the cursor back into range after rows shrink.
func keepSelection(t *tview.Table, n int) {
	row, _ := t.GetSelection()
	switch {
	case n == 0:
		t.Select(0, 0)
	case row < 1:
		t.Select(1, 0)
	case row > n:
		t.Select(n, 0)
	}
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("2006-01-02 15:04")
}

// static is a Component base for views without lifecycle work.
type static struct{}

func (static) Start() {}

func (static) Stop() {}
