package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar is the bottom line: session, auth state and a loading marker.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	session string
	state   string
	loading bool
	school  bool
}

func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)
	return &StatusBar{TextView: tv, theme: theme}
}

// Set updates every field and redraws.
func (sb *StatusBar) Set(session, state string, loading, school bool) {
	sb.session, sb.state, sb.loading, sb.school = session, state, loading, school
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()
	spinner := " "
	if sb.loading {
		spinner = fmt.Sprintf("[%s]loading…[-]", colorHex(sb.theme.LoadingColor))
	}
	school := "school: -"
	if sb.school {
		school = "school: ✓"
	}
	_, _ = fmt.Fprintf(sb, " [::b]%s[-:-:-] | %s | %s | %s | %s",
		tview.Escape(sb.session), sb.state, school, spinner, time.Now().Format("15:04"))
}
