package keys

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/classnotes/internal/tui/ui"
)

// Action is one key binding.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Label       string // menu key label; defaults to the rune
	Description string
	Handler     func()
	Hidden      bool
	Numeric     bool
}

// Matches reports whether the key, or rune for tcell.KeyRune, triggers
// the action.
func (a *Action) Matches(key tcell.Key, r rune) bool {
	if a.Key != tcell.KeyRune {
		return key == a.Key
	}
	return key == tcell.KeyRune && r == a.Rune
}

func (a *Action) hint() ui.MenuHint {
	label := a.Label
	if label == "" {
		label = string(a.Rune)
	}
	return ui.MenuHint{Key: label, Description: a.Description, Numeric: a.Numeric}
}

// Registry holds global bindings and per-page bindings, in the order they
// were added.
type Registry struct {
	global []*Action
	pages  map[string][]*Action
}

func NewRegistry() *Registry {
	return &Registry{pages: make(map[string][]*Action)}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(a *Action) {
	r.global = append(r.global, a)
}

// AddPage registers a binding for one page key.
func (r *Registry) AddPage(page string, a *Action) {
	r.pages[page] = append(r.pages[page], a)
}

// Hints returns the visible bindings of page followed by the global ones.
func (r *Registry) Hints(page string) []ui.MenuHint {
	var hints []ui.MenuHint
	for _, a := range r.pages[page] {
		if !a.Hidden {
			hints = append(hints, a.hint())
		}
	}
	for _, a := range r.global {
		if !a.Hidden {
			hints = append(hints, a.hint())
		}
	}
	return hints
}

// HandleEvent runs the first binding matching ev, page bindings first.
// It reports whether one matched.
func (r *Registry) HandleEvent(page string, ev *tcell.EventKey) bool {
	return r.HandleKey(page, ev.Key(), ev.Rune())
}

func (r *Registry) HandleKey(page string, key tcell.Key, ch rune) bool {
	for _, a := range r.pages[page] {
		if a.Matches(key, ch) {
			a.Handler()
			return true
		}
	}
	for _, a := range r.global {
		if a.Matches(key, ch) {
			a.Handler()
			return true
		}
	}
	return false
}
