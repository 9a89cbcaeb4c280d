package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// menuRows is how many hints fit in one menu column.
const menuRows = 5

// Menu lists the keyboard shortcuts of the current page.
type Menu struct {
	*tview.TextView
	theme *Theme
}

func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update lays hints out in columns of menuRows.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	lines := make([]strings.Builder, menuRows)
	for i, h := range hints {
		kc := m.theme.MenuKeyColor
		if h.Numeric {
			kc = m.theme.NumericKeyColor
		}
		cell := fmt.Sprintf("[%s::b]%-8s[-:-:-] %-14s", colorName(kc), "<"+h.Key+">", h.Description)
		lines[i%menuRows].WriteString(cell)
	}
	for i := range lines {
		_, _ = fmt.Fprintln(m, lines[i].String())
	}
}
