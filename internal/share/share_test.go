package share

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLinkRoundTrip(t *testing.T) {
	id, err := ParseLink(Link("3f9a0c"))
	if err != nil || id != "3f9a0c" {
		t.Fatalf("ParseLink(Link()) = %q, %v", id, err)
	}
}

func TestParseLinkRejects(t *testing.T) {
	for _, in := range []string{"", "classnotes://group/", "https://example.com/g/1", "classnotes://group/a/b"} {
		if _, err := ParseLink(in); !errors.Is(err, ErrInvalidLink) {
			t.Errorf("ParseLink(%q) error = %v, want ErrInvalidLink", in, err)
		}
	}
}

func TestRenderQR(t *testing.T) {
	out, err := RenderQR(Link("g1"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 10 {
		t.Fatalf("QR has %d lines", len(lines))
	}
	if !strings.ContainsAny(out, "█▀▄") {
		t.Error("QR has no dark modules")
	}
}

func TestPNG(t *testing.T) {
	img, err := PNG(Link("g1"), 128)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Error("PNG() did not return a PNG image")
	}
}
