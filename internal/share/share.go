// Package share builds invitation links for groups and renders them as
// terminal QR codes.
package share

import (
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const linkPrefix = "classnotes://group/"

var ErrInvalidLink = errors.New("not a group link")

// Link returns the invitation link of a group.
func Link(groupID string) string {
	return linkPrefix + groupID
}

// ParseLink extracts the group id from a link produced by Link.
func ParseLink(link string) (string, error) {
	id, ok := strings.CutPrefix(strings.TrimSpace(link), linkPrefix)
	if !ok || id == "" || strings.ContainsAny(id, "/?# ") {
		return "", ErrInvalidLink
	}
	return id, nil
}

// RenderQR draws content as a QR code with Unicode half blocks, two
// bitmap rows per terminal line.
func RenderQR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := y+1 < rows && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String(), nil
}

// PNG encodes content as a QR image of size pixels.
func PNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
