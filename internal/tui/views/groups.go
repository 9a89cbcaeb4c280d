package views

import (
	"fmt"

	"github.com/matheus3301/classnotes/internal/stores"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// GroupList is the table of groups.
type GroupList struct {
	*tview.Table
	static
	theme  *ui.Theme
	groups []stores.Group
}

func NewGroupList(theme *ui.Theme) *GroupList {
	return &GroupList{Table: newTable(theme, " Groups "), theme: theme}
}

func (gl *GroupList) Name() string { return "Groups" }

func (gl *GroupList) Hints() []ui.MenuHint { return nil }

// Update renders groups. uid marks the groups the user created.
func (gl *GroupList) Update(groups []stores.Group, uid string) {
	gl.groups = groups
	resetTable(gl.Table, gl.theme, column{"NAME", 2}, column{"OWNER", 0}, column{"CREATED", 1})
	for i, g := range groups {
		owner := ""
		if g.CreatedBy == uid {
			owner = "me"
		}
		setRow(gl.Table, gl.theme, i+1, g.Name, owner, formatMillis(g.CreatedAt))
	}
	keepSelection(gl.Table, len(groups))
	gl.SetTitle(fmt.Sprintf(" Groups (%d) ", len(groups)))
}

// Selected returns the group under the cursor.
func (gl *GroupList) Selected() (stores.Group, bool) {
	if i := selectedIndex(gl.Table, len(gl.groups)); i >= 0 {
		return gl.groups[i], true
	}
	return stores.Group{}, false
}
