package main

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ---------------------------------------------------------------------------
// Text Measurement
// ---------------------------------------------------------------------------

// encodeText converts UTF-8 to Windows-1252, the encoding of the PDF core
// fonts. Runes outside the code page become '?' and tabs become spaces.
func encodeText(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			out = append(out, ' ')
		case r < 0x80:
			out = append(out, byte(r))
		default:
			if b, ok := charmap.Windows1252.EncodeRune(r); ok {
				out = append(out, b)
			} else {
				out = append(out, '?')
			}
		}
	}
	return out
}

// decodeText is the inverse of encodeText.
func decodeText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(charmap.Windows1252.DecodeByte(c))
	}
	return sb.String()
}

// wrap splits text into lines no wider than width using the surface's current
// font. Callers must set the font they will draw with before wrapping. The
// result always has at least one line.
func (s *surface) wrap(text string, width float64) []string {
	raw := s.pdf.SplitLines(encodeText(text), width)
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, decodeText(l))
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// wrapAs sets the font and wraps in one step, keeping measurement and drawing
// on the same font state.
func (s *surface) wrapAs(f fontStyle, text string, width float64) []string {
	s.setFont(f)
	return s.wrap(text, width)
}
