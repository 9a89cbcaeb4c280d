package views

import (
	"strings"

	"github.com/rivo/tview"
)

// dropped lists code point ranges that break tcell cell widths: skin tone
// modifiers, the zero width joiner and variation selectors.
var dropped = [][2]rune{
	{0x1F3FB, 0x1F3FF},
	{0x200D, 0x200D},
	{0xFE00, 0xFE0F},
	{0xE0100, 0xE01EF},
}

func sanitizeForTerminal(s string) string {
	return strings.Map(func(r rune) rune {
		for _, rg := range dropped {
			if r >= rg[0] && r <= rg[1] {
				return -1
			}
		}
		return r
	}, s)
}

// clean prepares user text for a dynamic-color widget.
func clean(s string) string {
	return tview.Escape(sanitizeForTerminal(s))
}

// oneLine collapses s to its first line, cut to limit runes.
func oneLine(s string, limit int) string {
	s, _, _ = strings.Cut(s, "\n")
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}
