package tui

import "strings"

// Command is a parsed ":" prompt entry.
type Command struct {
	Name string
	Args string
}

var aliases = map[string]string{
	"g":  "groups",
	"c":  "classes",
	"s":  "subjects",
	"h":  "help",
	"q":  "quit",
	"d":  "date",
	"gr": "groups",
	"cl": "classes",
	"su": "subjects",
}

// ParseCommand parses a prompt entry, without the leading ':'. Aliases
// resolve to their full command name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	name, args, _ := strings.Cut(input, " ")
	name = strings.ToLower(name)
	if full, ok := aliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}
