package main

import (
	"math"

	"github.com/charmbracelet/log"
)

// ---------------------------------------------------------------------------
// Overflow Guard
// ---------------------------------------------------------------------------

// wouldOverflow reports whether needed millimetres drawn from y would pass
// the bottom-safe line.
func wouldOverflow(y, needed float64) bool {
	return y+needed > bottomSafe
}

// attempt is the state of one render: a fresh page, the variant in use and
// the shared cursor.
type attempt struct {
	s        *surface
	v        LayoutVariant
	strict   bool
	overflow bool
	y        float64
	logger   *log.Logger

	// valueLines caps the wrapped lines of every field value; 0 is no cap.
	// Only best-effort attempts set it.
	valueLines int
}

func newAttempt(v LayoutVariant, strict bool, logger *log.Logger) *attempt {
	if logger == nil {
		logger = log.Default()
	}
	return &attempt{s: newSurface(), v: v, strict: strict, y: pageMargin, logger: logger}
}

// reserve consults the guard before anything is drawn at y. It returns false
// when the attempt has to stop; in best-effort mode the overflow is recorded
// and drawing continues.
func (a *attempt) reserve(y, needed float64) bool {
	if !wouldOverflow(y, needed) {
		return true
	}
	a.overflow = true
	return !a.strict
}

// document wraps up the attempt.
func (a *attempt) document() *Document {
	return &Document{
		Variant:  a.v,
		Overflow: a.overflow,
		Ops:      a.s.ops,
		surface:  a.s,
	}
}

// ---------------------------------------------------------------------------
// Sections
// ---------------------------------------------------------------------------

// bandInset is the space above a section band; the band fills the section
// gap less the inset above and the breathing room below.
const (
	bandInset = 2.0
	bandBelow = 2.0
)

// header draws a filled band with the section title and advances the cursor
// by the variant's section gap.
func (a *attempt) header(title string) bool {
	if !a.reserve(a.y, a.v.SectionGap) {
		return false
	}
	bandY := a.y + bandInset
	bandH := a.v.SectionGap - bandInset - bandBelow
	font := a.v.bandFont()
	capHeight := font.size * ptToMM * 0.7

	a.s.setFillColor(colorBand)
	a.s.rect(pageMargin, bandY, contentWidth, bandH, "F")
	a.s.setFont(font)
	a.s.setTextColor(colorTitle)
	a.s.text(pageMargin+3, bandY+(bandH+capHeight)/2, title)

	a.y += a.v.SectionGap
	a.s.setTextColor(colorText)
	return true
}

// columns lays out both columns from the current cursor, each with its own
// cursor, then moves the shared cursor below the taller one.
func (a *attempt) columns(left, right []fieldItem) bool {
	leftY, rightY := a.y, a.y
	xLeft := pageMargin
	xRight := pageMargin + columnWidth + columnGap

	for _, item := range left {
		h := a.measureField(item.label, item.value, columnWidth)
		if !a.reserve(leftY, h) {
			return false
		}
		leftY = a.drawField(xLeft, leftY, item.label, item.value, columnWidth)
	}
	for _, item := range right {
		h := a.measureField(item.label, item.value, columnWidth)
		if !a.reserve(rightY, h) {
			return false
		}
		rightY = a.drawField(xRight, rightY, item.label, item.value, columnWidth)
	}

	a.y = math.Max(leftY, rightY)
	return true
}

// section draws a titled two-column data section.
func (a *attempt) section(title string, left, right []fieldItem) bool {
	return a.header(title) && a.columns(left, right)
}

// fitValueLines picks the largest value line cap that lets the sections end
// with tail to spare above the safe line. It returns 0 when the sections fit
// as they are and 1 when no cap is enough.
func (a *attempt) fitValueLines(sections [][2][]fieldItem, tail float64) int {
	blocks := make([][2][]fieldBlock, len(sections))
	longest := 0
	for i, cols := range sections {
		for c, items := range cols {
			for _, item := range items {
				b := a.wrapField(item.label, item.value, columnWidth)
				blocks[i][c] = append(blocks[i][c], b)
				longest = max(longest, len(b.value))
			}
		}
	}

	fits := func(n int) bool {
		y := a.y
		for _, cols := range blocks {
			var h [2]float64
			for c, col := range cols {
				for _, b := range col {
					h[c] += b.capped(n).height(a.v)
				}
			}
			y += a.v.SectionGap + math.Max(h[0], h[1])
		}
		return !wouldOverflow(y, tail)
	}

	if fits(0) {
		return 0
	}
	for n := longest - 1; n > 1; n-- {
		if fits(n) {
			return n
		}
	}
	return 1
}
