package main

import (
	"strings"
)

// ---------------------------------------------------------------------------
// Field Blocks
// ---------------------------------------------------------------------------

// Vertical spacing inside a field block (mm).
const (
	labelValueGap = 0.6
	valueRuleGap  = 1.0
	ruleSpacing   = 1.6
	fieldPadding  = labelValueGap + valueRuleGap + ruleSpacing
)

// fieldBlock holds the wrapped lines of one label/value pair.
type fieldBlock struct {
	label []string
	value []string
}

// clipMark ends a value cut short by the line cap.
const clipMark = "..."

// wrapField wraps a pair with the fonts it will be drawn in and applies the
// attempt's value line cap.
func (a *attempt) wrapField(label, value string, width float64) fieldBlock {
	b := fieldBlock{
		label: a.s.wrapAs(a.v.labelFont(), strings.ToUpper(label), width),
		value: a.s.wrapAs(a.v.valueFont(), display(value), width),
	}
	if n := a.valueLines; n > 0 && len(b.value) > n {
		b.value = a.s.clipLines(b.value, n, width)
	}
	return b
}

// clipLines keeps the first n lines and marks the cut on the last one. The
// current font must be the one the lines were wrapped in.
func (s *surface) clipLines(lines []string, n int, width float64) []string {
	out := append([]string(nil), lines[:n]...)
	last := []rune(strings.TrimRight(out[n-1], " "))
	for len(last) > 0 && len(s.wrap(string(last)+clipMark, width)) > 1 {
		last = last[:len(last)-1]
	}
	out[n-1] = strings.TrimRight(string(last), " ") + clipMark
	return out
}

// capped returns the block as it would be with at most n value lines.
func (b fieldBlock) capped(n int) fieldBlock {
	if n > 0 && len(b.value) > n {
		b.value = b.value[:n]
	}
	return b
}

// height is the single formula shared by measureField and drawField.
func (b fieldBlock) height(v LayoutVariant) float64 {
	return float64(len(b.label))*v.labelLineHeight() +
		float64(len(b.value))*v.valueLineHeight() +
		fieldPadding
}

// measureField returns the height drawField would consume.
func (a *attempt) measureField(label, value string, width float64) float64 {
	return a.wrapField(label, value, width).height(a.v)
}

// drawField draws a label above its value, rules it off and returns the
// cursor below the rule.
func (a *attempt) drawField(x, y float64, label, value string, width float64) float64 {
	b := a.wrapField(label, value, width)

	labelH := a.v.labelLineHeight()
	a.s.setFont(a.v.labelFont())
	a.s.setTextColor(colorMuted)
	for i, l := range b.label {
		a.s.text(x, y+labelH*0.8+float64(i)*labelH, l)
	}
	cursor := y + float64(len(b.label))*labelH + labelValueGap

	valueH := a.v.valueLineHeight()
	a.s.setFont(a.v.valueFont())
	a.s.setTextColor(colorText)
	for i, l := range b.value {
		a.s.text(x, cursor+valueH*0.85+float64(i)*valueH, l)
	}
	cursor += float64(len(b.value))*valueH + valueRuleGap

	a.s.setDrawColor(colorRule)
	a.s.setLineWidth(0.2)
	a.s.line(x, cursor+ruleSpacing/2, x+width, cursor+ruleSpacing/2)
	return cursor + ruleSpacing
}
