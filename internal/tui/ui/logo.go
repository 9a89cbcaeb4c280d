package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Logo is the header banner.
type Logo struct {
	*tview.TextView
	theme *Theme
}

func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 0, 1)

	l := &Logo{
		TextView: tv,
		theme:    theme,
	}
	title := colorName(theme.TitleColor)
	_, _ = fmt.Fprintf(l,
		"[%s::b]┏━╸╻  ┏━┓┏━┓┏━┓[-:-:-]\n"+
			"[%s::b]┃  ┃  ┣━┫┗━┓┗━┓[-:-:-]\n"+
			"[%s::b]┗━╸┗━╸╹ ╹┗━┛┗━┛[-:-:-]\n"+
			"[%s]notes · chat · roster[-:-:-]",
		title, title, title, colorName(theme.FgColor),
	)
	return l
}
