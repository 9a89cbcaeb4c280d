package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // page shortcuts, drawn in a different color
}

// Component is a page managed by Pages. Start runs when the page is pushed
// and Stop when it leaves the stack.
type Component interface {
	tview.Primitive
	Name() string
	Hints() []MenuHint
	Start()
	Stop()
}
