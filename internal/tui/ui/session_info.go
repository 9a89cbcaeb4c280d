package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// SessionData is what the header shows about the session.
type SessionData struct {
	Session  string
	Username string
	Email    string
	State    string
	School   string
	LoggedIn bool
	Groups   int
}

// SessionInfo is the header panel with session metadata.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
}

func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

func (si *SessionInfo) Update(data SessionData) {
	si.Clear()
	label := colorName(si.theme.FgColor)
	value := colorName(si.theme.CounterColor)

	user := dash(data.Username)
	if data.Email != "" {
		user += " <" + data.Email + ">"
	}
	school := "logged out"
	if data.LoggedIn {
		school = "logged in"
	}
	rows := [][2]string{
		{"Session:", data.Session},
		{"User:", user},
		{"Auth:", data.State},
		{"School:", dash(data.School) + " (" + school + ")"},
		{"Groups:", fmt.Sprint(data.Groups)},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(si, "[%s::b]%-9s[-:-:-][%s]%s[-]\n", label, r[0], value, tview.Escape(r[1]))
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
