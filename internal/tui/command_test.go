package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"groups", Command{Name: "groups"}},
		{"  :Classes  ", Command{Name: "classes"}},
		{"date 2024-06-10", Command{Name: "date", Args: "2024-06-10"}},
		{"d   2024-06-10 ", Command{Name: "date", Args: "2024-06-10"}},
		{"login ana@school.test secret1", Command{Name: "login", Args: "ana@school.test secret1"}},
		{"q", Command{Name: "quit"}},
		{"", Command{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseCommand(tt.in); got != tt.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
