package views

import (
	"fmt"

	"github.com/matheus3301/classnotes/internal/share"
	"github.com/matheus3301/classnotes/internal/stores"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// ShareView shows a group's invite link as a QR code.
type ShareView struct {
	*tview.TextView
	static
	group stores.Group
}

func NewShareView(theme *ui.Theme) *ShareView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitleColor(theme.TitleColor)
	return &ShareView{TextView: tv}
}

func (sv *ShareView) Name() string { return "Share " + sv.group.Name }

func (sv *ShareView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

// Show renders the invite of g.
func (sv *ShareView) Show(g stores.Group) {
	sv.group = g
	sv.Clear()
	sv.SetTitle(" Share " + clean(g.Name) + " ")
	link := share.Link(g.ID)
	qr, err := share.RenderQR(link)
	if err != nil {
		_, _ = fmt.Fprintf(sv, "\n\nQR generation failed: %s\n\n%s", tview.Escape(err.Error()), link)
		return
	}
	_, _ = fmt.Fprintf(sv, "\nScan to join [::b]%s[-:-:-]:\n\n%s\n[::d]%s[-:-:-]", clean(g.Name), qr, link)
}
