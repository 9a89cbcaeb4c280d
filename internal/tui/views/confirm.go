package views

import (
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// Confirm asks a yes/no question before a destructive action.
type Confirm struct {
	*tview.Modal
	static
}

func NewConfirm(theme *ui.Theme) *Confirm {
	m := tview.NewModal().AddButtons([]string{"Delete", "Cancel"})
	m.SetBackgroundColor(theme.BgColor)
	m.SetBorderColor(theme.FlashErrColor)
	return &Confirm{Modal: m}
}

// Ask sets the question. yes runs for Delete, done runs afterwards either way.
func (c *Confirm) Ask(text string, yes, done func()) {
	c.SetText(text)
	c.SetFocus(1)
	c.SetDoneFunc(func(_ int, label string) {
		done()
		if label == "Delete" {
			yes()
		}
	})
}

func (c *Confirm) Name() string { return "Confirm" }

func (c *Confirm) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "←/→", Description: "Choose"}, {Key: "Enter", Description: "Confirm"}}
}
