package main

// ---------------------------------------------------------------------------
// Layout Variants
// ---------------------------------------------------------------------------

// LayoutVariant is one set of typographic constants for a render attempt.
// Sizes are in points, distances in millimetres.
type LayoutVariant struct {
	Name       string  `json:"name"`
	HeaderSize float64 `json:"headerSize"`
	LabelSize  float64 `json:"labelSize"`
	ValueSize  float64 `json:"valueSize"`
	SectionGap float64 `json:"sectionGap"`
	LineGap    float64 `json:"lineGap"`
	SigHeight  float64 `json:"sigHeight"`
}

// layoutVariants is ordered loosest to tightest.
var layoutVariants = []LayoutVariant{
	{Name: "normal", HeaderSize: 14, LabelSize: 8.5, ValueSize: 10, SectionGap: 11, LineGap: 2.6, SigHeight: 18},
	{Name: "compact", HeaderSize: 13, LabelSize: 8, ValueSize: 9.2, SectionGap: 10, LineGap: 2.2, SigHeight: 16},
	{Name: "ultra", HeaderSize: 12, LabelSize: 7.6, ValueSize: 8.6, SectionGap: 9, LineGap: 1.8, SigHeight: 14},
}

func (v LayoutVariant) labelLineHeight() float64 { return v.LineGap + 1.0 }
func (v LayoutVariant) valueLineHeight() float64 { return v.LineGap + 1.4 }

func (v LayoutVariant) labelFont() fontStyle { return fontStyle{size: v.LabelSize} }
func (v LayoutVariant) valueFont() fontStyle { return fontStyle{style: "B", size: v.ValueSize} }
func (v LayoutVariant) bandFont() fontStyle { return fontStyle{style: "B", size: v.HeaderSize - 2} }
func (v LayoutVariant) commentFont() fontStyle { return fontStyle{size: v.ValueSize} }

// variantIndex returns the position of name in layoutVariants, or -1.
func variantIndex(name string) int {
	for i, v := range layoutVariants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Variant Selection
// ---------------------------------------------------------------------------

// renderFunc performs one complete, independent render. With strict set the
// render stops at the first overflow; otherwise it records the overflow and
// keeps drawing.
type renderFunc func(v LayoutVariant, strict bool) *Document

// selectLayout returns the first strict attempt that fits. When every variant
// overflows, the densest one is rendered again in best-effort mode so a
// complete document is always produced.
func selectLayout(variants []LayoutVariant, render renderFunc) *Document {
	if len(variants) == 0 {
		variants = layoutVariants
	}
	attempts := 0
	for _, v := range variants {
		attempts++
		doc := render(v, true)
		if !doc.Overflow {
			doc.Attempts = attempts
			return doc
		}
	}
	doc := render(variants[len(variants)-1], false)
	doc.Overflow = true
	doc.Attempts = attempts + 1
	return doc
}
