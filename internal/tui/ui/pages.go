package ui

import "github.com/rivo/tview"

type entry struct {
	key  string
	comp Component
}

// Pages is a stack of components on top of tview.Pages. Components are
// started when pushed and stopped when popped or reset away.
type Pages struct {
	*tview.Pages
	stack    []entry
	onChange func(names []string)
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange sets a callback that fires with the page names whenever the
// stack changes.
func (p *Pages) SetOnChange(fn func(names []string)) {
	p.onChange = fn
}

// Push shows c under key on top of the stack. If key is already stacked,
// it and everything above it are removed first.
func (p *Pages) Push(key string, c Component) {
	p.unwind(key)
	if top := p.top(); top != nil {
		p.HidePage(top.key)
	}
	p.stack = append(p.stack, entry{key: key, comp: c})
	p.AddPage(key, c, true, true)
	p.SendToFront(key)
	c.Start()
	p.notify()
}

// Pop removes the top page and shows the one below it. The root page is
// never popped; Pop returns nil in that case.
func (p *Pages) Pop() Component {
	if len(p.stack) < 2 {
		return nil
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	top.comp.Stop()
	p.RemovePage(top.key)

	cur := p.stack[len(p.stack)-1]
	p.ShowPage(cur.key)
	p.SendToFront(cur.key)
	p.notify()
	return top.comp
}

// Reset stops every stacked page and makes c the only one.
func (p *Pages) Reset(key string, c Component) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		p.stack[i].comp.Stop()
		p.RemovePage(p.stack[i].key)
	}
	p.stack = nil
	p.Push(key, c)
}

// Current returns the top component, or nil.
func (p *Pages) Current() Component {
	if top := p.top(); top != nil {
		return top.comp
	}
	return nil
}

// CurrentKey returns the key of the top page, or "".
func (p *Pages) CurrentKey() string {
	if top := p.top(); top != nil {
		return top.key
	}
	return ""
}

// Names returns the display names of the stack, bottom first.
func (p *Pages) Names() []string {
	names := make([]string, len(p.stack))
	for i, e := range p.stack {
		names[i] = e.comp.Name()
	}
	return names
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

func (p *Pages) top() *entry {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

func (p *Pages) unwind(key string) {
	for i, e := range p.stack {
		if e.key != key {
			continue
		}
		for j := len(p.stack) - 1; j >= i; j-- {
			p.stack[j].comp.Stop()
			p.RemovePage(p.stack[j].key)
		}
		p.stack = p.stack[:i]
		if top := p.top(); top != nil {
			p.ShowPage(top.key)
		}
		return
	}
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Names())
	}
}
