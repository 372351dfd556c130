package main

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// ---------------------------------------------------------------------------
// Page Geometry
// ---------------------------------------------------------------------------

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	pageMargin   = 12.0
	contentWidth = pageWidth - 2*pageMargin
	columnGap    = 6.0
	columnWidth  = (contentWidth - columnGap) / 2

	// bottomSafe is the lowest y any content may reach.
	bottomSafe = 287.0

	fontFamily = "Helvetica"
	ptToMM     = 25.4 / 72
)

type rgb struct{ r, g, b int }

var (
	colorBand  = rgb{0xfd, 0xe2, 0xe7}
	colorTitle = rgb{0x00, 0x00, 0x00}
	colorText  = rgb{0x11, 0x11, 0x11}
	colorMuted = rgb{0x6b, 0x72, 0x80}
	colorRule  = rgb{0xe5, 0xe7, 0xeb}
)

// fontStyle is the font state shared by measurement and drawing.
type fontStyle struct {
	style string // "" or "B"
	size  float64
}

// ---------------------------------------------------------------------------
// Drawing Surface
// ---------------------------------------------------------------------------

type opKind string

const (
	opText  opKind = "text"
	opRect  opKind = "rect"
	opLine  opKind = "line"
	opImage opKind = "image"
)

// DrawOp records one drawing primitive in page coordinates (mm).
type DrawOp struct {
	Kind  opKind  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	Text  string  `json:"text,omitempty"`
	Style string  `json:"style,omitempty"`
	Size  float64 `json:"size,omitempty"`
	Name  string  `json:"name,omitempty"`
}

// surface is a single A4 page. Every primitive is forwarded to fpdf and
// recorded, so the layout can be inspected without parsing PDF output.
type surface struct {
	pdf  *fpdf.Fpdf
	font fontStyle
	ops  []DrawOp
}

// newSurface creates an A4 portrait page in millimetres with automatic page
// breaks disabled; content never flows onto a second page.
func newSurface() *surface {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	s := &surface{pdf: pdf}
	s.setFont(fontStyle{size: 10})
	return s
}

func (s *surface) setFont(f fontStyle) {
	s.font = f
	s.pdf.SetFont(fontFamily, f.style, f.size)
}

func (s *surface) setTextColor(c rgb) { s.pdf.SetTextColor(c.r, c.g, c.b) }
func (s *surface) setDrawColor(c rgb) { s.pdf.SetDrawColor(c.r, c.g, c.b) }
func (s *surface) setFillColor(c rgb) { s.pdf.SetFillColor(c.r, c.g, c.b) }
func (s *surface) setLineWidth(w float64) { s.pdf.SetLineWidth(w) }

// text draws one line with its baseline at y.
func (s *surface) text(x, y float64, line string) {
	s.pdf.Text(x, y, string(encodeText(line)))
	s.ops = append(s.ops, DrawOp{Kind: opText, X: x, Y: y, Text: line, Style: s.font.style, Size: s.font.size})
}

// textRight draws one line ending at xRight.
func (s *surface) textRight(xRight, y float64, line string) {
	s.text(xRight-s.pdf.GetStringWidth(string(encodeText(line))), y, line)
}

// rect draws a rectangle; style is "D" (outline) or "F" (fill).
func (s *surface) rect(x, y, w, h float64, style string) {
	s.pdf.Rect(x, y, w, h, style)
	s.ops = append(s.ops, DrawOp{Kind: opRect, X: x, Y: y, W: w, H: h, Style: style})
}

func (s *surface) line(x1, y1, x2, y2 float64) {
	s.pdf.Line(x1, y1, x2, y2)
	s.ops = append(s.ops, DrawOp{Kind: opLine, X: x1, Y: y1, W: x2 - x1, H: y2 - y1})
}

// image places a decoded image. A registration failure is reported and leaves
// the page untouched.
func (s *surface) image(name string, img *Image, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	s.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if err := s.pdf.Error(); err != nil {
		s.pdf.ClearError()
		return fmt.Errorf("failed to register image %s: %w", name, err)
	}
	s.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	s.ops = append(s.ops, DrawOp{Kind: opImage, X: x, Y: y, W: w, H: h, Name: name})
	return nil
}

// output renders the page to PDF bytes.
func (s *surface) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
