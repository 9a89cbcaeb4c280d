package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView is the key and command reference.
type HelpView struct {
	*tview.TextView
	static
}

var helpSections = []struct {
	title string
	rows  [][2]string
}{
	{"Global", [][2]string{
		{":", "Command prompt"},
		{"Esc", "Back"},
		{"?", "This help"},
		{"1 / 2 / 3", "Groups / Classes / Subjects"},
		{"Ctrl-C", "Quit"},
	}},
	{"Groups", [][2]string{
		{"Enter", "Open notes"},
		{"c", "Open chat"},
		{"n / e / d", "New / rename / delete group"},
		{"s", "Share as QR code"},
		{"r", "Refresh"},
	}},
	{"Notes", [][2]string{
		{"n / e / d", "New / edit / delete note"},
		{"/", "Filter by day (YYYY-MM-DD)"},
		{"0", "Clear the day filter"},
		{"c", "Open the group chat"},
	}},
	{"Chat", [][2]string{
		{"i", "Focus the composer"},
		{"Enter", "Send (in composer)"},
	}},
	{"Classes", [][2]string{
		{"Enter", "Open class"},
		{"n / e / d", "New / edit / delete class"},
		{"Tab", "Switch students / subjects (class page)"},
		{"l / u", "Link / unlink a subject (class page)"},
	}},
	{"Commands", [][2]string{
		{":groups :classes :subjects", "Go to a page"},
		{":date YYYY-MM-DD", "Filter notes by day"},
		{":login :logout", "School API session"},
		{":signout", "Sign out of the notes account"},
		{":quit", "Quit"},
	}},
}

func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	kc := colorHex(theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, r := range s.rows {
			fmt.Fprintf(&b, "  [%s]%-28s[-:-:-] %s\n", kc, tview.Escape(r[0]), r[1])
		}
	}
	tv.SetText(b.String())
	return &HelpView{TextView: tv}
}

func (hv *HelpView) Name() string { return "Help" }

func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}
