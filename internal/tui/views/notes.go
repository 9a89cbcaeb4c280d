package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/classnotes/internal/stores"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// NoteList shows a group's notes, newest first, and the selected note's
// content below the table.
type NoteList struct {
	*tview.Flex
	static
	theme   *ui.Theme
	table   *tview.Table
	content *tview.TextView
	group   stores.Group
	notes   []stores.Note
}

func NewNoteList(theme *ui.Theme) *NoteList {
	table := newTable(theme, " Notes ")
	content := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	content.SetBorder(true)
	content.SetBorderColor(theme.BorderColor)
	content.SetBackgroundColor(theme.BgColor)
	content.SetTextColor(theme.FgColor)

	nl := &NoteList{
		Flex: tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(table, 0, 1, true).
			AddItem(content, 0, 1, false),
		theme:   theme,
		table:   table,
		content: content,
	}
	table.SetSelectionChangedFunc(func(int, int) { nl.showSelected() })
	return nl
}

func (nl *NoteList) Name() string { return nl.group.Name + " notes" }

func (nl *NoteList) Hints() []ui.MenuHint { return nil }

// Update renders notes of group. A non-zero day is shown as the active filter.
func (nl *NoteList) Update(group stores.Group, notes []stores.Note, day time.Time) {
	nl.group = group
	nl.notes = notes
	resetTable(nl.table, nl.theme, column{"TITLE", 1}, column{"CONTENT", 3}, column{"CREATED", 0})
	for i, n := range notes {
		setRow(nl.table, nl.theme, i+1, n.Title, oneLine(n.Content, 60), formatMillis(n.CreatedAt))
	}
	keepSelection(nl.table, len(notes))

	title := fmt.Sprintf(" %s: notes (%d) ", group.Name, len(notes))
	if !day.IsZero() {
		title = fmt.Sprintf(" %s: notes (%d) on %s ", group.Name, len(notes), day.Format(stores.DateLayout))
	}
	nl.table.SetTitle(tview.Escape(title))
	nl.showSelected()
}

// Selected returns the note under the cursor.
func (nl *NoteList) Selected() (stores.Note, bool) {
	if i := selectedIndex(nl.table, len(nl.notes)); i >= 0 {
		return nl.notes[i], true
	}
	return stores.Note{}, false
}

// Group returns the group whose notes are shown.
func (nl *NoteList) Group() stores.Group { return nl.group }

func (nl *NoteList) showSelected() {
	nl.content.Clear()
	n, ok := nl.Selected()
	if !ok {
		nl.content.SetTitle(" ")
		return
	}
	nl.content.SetTitle(" " + clean(n.Title) + " ")
	_, _ = fmt.Fprint(nl.content, clean(n.Content))
	if n.UpdatedAt != 0 && n.UpdatedAt != n.CreatedAt {
		_, _ = fmt.Fprintf(nl.content, "\n\n[::d]edited %s[-:-:-]", formatMillis(n.UpdatedAt))
	}
	nl.content.ScrollToBeginning()
}
