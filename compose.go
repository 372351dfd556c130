package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------------
// Composer
// ---------------------------------------------------------------------------

// Fixed block geometry (mm).
const (
	logoMaxWidth  = 36.0
	logoMaxHeight = 8.0
	logoTop       = pageMargin - 7

	signatureCaption = 6.0 // caption row above the boxes
	signatureAfter   = 3.0
	signatureInset   = 2.0
	captionSize      = 9.0

	commentPadding = 6.0
	commentInset   = 3.0
	commentAfter   = 4.0

	termsSize       = 7.1
	termsLineHeight = 3.0
	termsGap        = 2.0

	companyLineSize = 9.0
)

// Composer lays out waste transfer notes. It holds configuration only; every
// Compose call builds its own pages.
type Composer struct {
	Company  CompanyConfig
	Sections []SectionConfig
	Variants []LayoutVariant
	Images   imageLoader
	Logger   *log.Logger
}

// newComposer wires a composer from configuration.
func newComposer(cfg *Config, images imageLoader, logger *log.Logger) *Composer {
	return &Composer{
		Company:  cfg.Company,
		Sections: cfg.Sections,
		Variants: layoutVariants,
		Images:   images,
		Logger:   logger,
	}
}

// documentAssets are the images a note needs, loaded once per composition.
type documentAssets struct {
	logo      *Image
	operative *Image
	customer  *Image
}

// Compose lays out one note, trying each variant until the page fits. It
// always returns a document; job may be nil.
func (c *Composer) Compose(w *WasteTransferNote, job *Job) *Document {
	if w == nil {
		w = &WasteTransferNote{}
	}
	assets := c.loadAssets(w)

	doc := selectLayout(c.Variants, func(v LayoutVariant, strict bool) *Document {
		return c.renderOnce(v, strict, w, job, assets)
	})
	doc.Filename = documentFilename(w)

	c.logger().Debug("composed waste transfer note",
		"file", doc.Filename, "variant", doc.Variant.Name,
		"attempts", doc.Attempts, "overflow", doc.Overflow)
	if doc.Overflow {
		c.logger().Warn("note does not fit on one page", "file", doc.Filename, "variant", doc.Variant.Name)
	}
	return doc
}

func (c *Composer) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// loadAssets fetches the logo and both signatures concurrently and waits for
// all of them. A failed load leaves its slot nil.
func (c *Composer) loadAssets(w *WasteTransferNote) documentAssets {
	var assets documentAssets
	if c.Images == nil {
		return assets
	}

	var g errgroup.Group
	load := func(dst **Image, ref, role string) {
		if strings.TrimSpace(ref) == "" {
			return
		}
		g.Go(func() error {
			*dst = c.Images.Load(ref)
			if *dst == nil {
				c.logger().Warn("image unavailable, leaving it out", "image", role)
			}
			return nil
		})
	}
	load(&assets.logo, c.Company.Logo, "logo")
	load(&assets.operative, w.OperativeSignatureURL, "operative signature")
	load(&assets.customer, w.CustomerSignatureURL, "customer signature")
	_ = g.Wait()

	return assets
}

// renderOnce draws the whole note from the top of a fresh page.
func (c *Composer) renderOnce(v LayoutVariant, strict bool, w *WasteTransferNote, job *Job, assets documentAssets) *Document {
	a := newAttempt(v, strict, c.Logger)
	sections := c.Sections
	if len(sections) == 0 {
		sections = defaultSections
	}

	if !a.companyHeader(c.Company, assets.logo) {
		return a.document()
	}
	items := make([][2][]fieldItem, len(sections))
	for i, s := range sections {
		items[i][0], items[i][1] = s.items(w, job)
	}
	terms := a.s.wrapAs(fontStyle{size: termsSize}, display(c.Company.Terms), contentWidth)
	if !strict {
		a.valueLines = a.fitValueLines(items, a.tailHeight(termsHeight(terms)))
		if a.valueLines > 0 {
			a.logger.Debug("clipping field values", "variant", v.Name, "lines", a.valueLines)
		}
	}

	for i, s := range sections {
		if !a.section(s.Title, items[i][0], items[i][1]) {
			return a.document()
		}
	}
	if !a.signatures(display(w.DriverName), display(w.CustomerName), assets.operative, assets.customer) {
		return a.document()
	}
	if !a.comments(w.comments(), termsHeight(terms)) {
		return a.document()
	}
	a.terms(terms)
	return a.document()
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// companyHeader draws the logo and the fixed company lines.
func (a *attempt) companyHeader(co CompanyConfig, logo *Image) bool {
	height := 10.0
	if n := len(co.Lines); n > 0 {
		height = 14 + 4*float64(n-1)
	}
	if !a.reserve(a.y, height) {
		return false
	}

	if logo != nil {
		w, h := logo.fit(logoMaxWidth, logoMaxHeight)
		a.placeImage("logo", logo, pageWidth-pageMargin-w, logoTop, w, h)
	}

	a.s.setTextColor(colorText)
	a.s.setFont(fontStyle{style: "B", size: a.v.HeaderSize})
	a.s.text(pageMargin, a.y+6, co.Name)
	if co.Title != "" {
		a.s.setFont(fontStyle{style: "B", size: a.v.HeaderSize - 1})
		a.s.textRight(pageWidth-pageMargin, a.y+6, co.Title)
	}

	a.s.setFont(fontStyle{size: companyLineSize})
	a.s.setTextColor(colorMuted)
	for i, line := range co.Lines {
		a.s.text(pageMargin, a.y+10.5+4*float64(i), line)
	}

	a.y += height
	return true
}

// signatures draws the captions and two equal boxes with the signature
// images inset. A missing image leaves its box empty.
func (a *attempt) signatures(driver, customer string, operative, cust *Image) bool {
	if !a.header("Signatures") {
		return false
	}
	sigH := a.v.SigHeight
	if !a.reserve(a.y, signatureCaption+sigH+signatureAfter) {
		return false
	}

	a.s.setFont(fontStyle{size: captionSize})
	a.s.setTextColor(colorMuted)
	a.s.setDrawColor(colorRule)
	a.s.setLineWidth(0.2)

	boxY := a.y + signatureCaption
	boxes := []struct {
		caption string
		name    string
		img     *Image
	}{
		{"Driver: " + driver, "operative-signature", operative},
		{"Customer: " + customer, "customer-signature", cust},
	}
	for i, box := range boxes {
		x := pageMargin + float64(i)*(columnWidth+columnGap)
		a.s.text(x, a.y+4, a.s.wrap(box.caption, columnWidth)[0])
		a.s.rect(x, boxY, columnWidth, sigH, "D")
		if box.img != nil {
			maxW, maxH := columnWidth-2*signatureInset, sigH-2*signatureInset
			w, h := box.img.fit(maxW, maxH)
			a.placeImage(box.name, box.img, x+signatureInset+(maxW-w)/2, boxY+signatureInset+(maxH-h)/2, w, h)
		}
	}

	a.y = boxY + sigH + signatureAfter
	return true
}

// comments draws the free-text block inside a box sized to its lines. The
// box never drops below the signature height. reservedBelow is the space the
// terms need; a best-effort attempt clips the box to leave it.
func (a *attempt) comments(text string, reservedBelow float64) bool {
	if !a.header("Additional Comments") {
		return false
	}
	lineH := a.v.valueLineHeight()
	lines := a.s.wrapAs(a.v.commentFont(), text, contentWidth-2*commentInset)
	boxH := math.Max(a.v.SigHeight, float64(len(lines))*lineH+commentPadding)
	if !a.reserve(a.y, boxH+commentAfter) {
		return false
	}
	if !a.strict {
		room := bottomSafe - reservedBelow - commentAfter - a.y
		boxH = math.Max(a.v.SigHeight, math.Min(boxH, room))
	}

	a.s.setDrawColor(colorRule)
	a.s.setLineWidth(0.2)
	a.s.rect(pageMargin, a.y, contentWidth, boxH, "D")

	a.s.setTextColor(colorText)
	textY := a.y + commentInset + lineH*0.8
	for _, line := range lines {
		if textY > a.y+boxH-2 {
			break
		}
		a.s.text(pageMargin+commentInset, textY, line)
		textY += lineH
	}

	a.y += boxH + commentAfter
	return true
}

// tailHeight is the least room the blocks after the sections take: the
// signatures, a comments box of signature height and the terms.
func (a *attempt) tailHeight(terms float64) float64 {
	return a.v.SectionGap + signatureCaption + a.v.SigHeight + signatureAfter +
		a.v.SectionGap + a.v.SigHeight + commentAfter +
		terms
}

func termsHeight(lines []string) float64 {
	return float64(len(lines))*termsLineHeight + termsGap
}

// terms draws the legal paragraph pinned to the bottom of the page. It is the
// last guard check of an attempt.
func (a *attempt) terms(lines []string) bool {
	if !a.reserve(a.y, termsHeight(lines)) {
		return false
	}
	top := bottomSafe - float64(len(lines))*termsLineHeight
	a.s.setFont(fontStyle{size: termsSize})
	a.s.setTextColor(colorMuted)
	for i, line := range lines {
		a.s.text(pageMargin, top+2.4+float64(i)*termsLineHeight, line)
	}
	return true
}

// placeImage draws an image, logging and skipping it when fpdf rejects it.
func (a *attempt) placeImage(name string, img *Image, x, y, w, h float64) {
	if err := a.s.image(name, img, x, y, w, h); err != nil {
		a.logger.Warn("image skipped", "image", name, "err", err)
	}
}
