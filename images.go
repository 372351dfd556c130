package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ---------------------------------------------------------------------------
// Images
// ---------------------------------------------------------------------------

const (
	maxImageBytes  = 10 << 20
	maxImagePixels = 1200
)

// Image is a decoded raster re-encoded as 8-bit PNG, the form fpdf embeds
// reliably.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// fit returns the largest size with the image's aspect ratio that fits in
// maxW x maxH.
func (img *Image) fit(maxW, maxH float64) (w, h float64) {
	if img.Width <= 0 || img.Height <= 0 {
		return maxW, maxH
	}
	ratio := float64(img.Height) / float64(img.Width)
	w, h = maxW, maxW*ratio
	if h > maxH {
		h = maxH
		w = maxH / ratio
	}
	return w, h
}

// imageLoader turns a reference into a drawable image. It never fails: a
// reference that cannot be loaded yields nil.
type imageLoader interface {
	Load(ref string) *Image
}

// imageFetcher loads data: URLs, http(s) URLs and local files. Root-relative
// paths such as /images/logo.png resolve under root.
type imageFetcher struct {
	client *http.Client
	root   string
	logger *log.Logger
}

func newImageFetcher(root string, timeout time.Duration, logger *log.Logger) *imageFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &imageFetcher{
		client: &http.Client{Timeout: timeout},
		root:   root,
		logger: logger,
	}
}

// Load implements imageLoader.
func (f *imageFetcher) Load(ref string) *Image {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	data, err := f.read(ref)
	if err != nil {
		f.logger.Debug("image not loaded", "ref", shortRef(ref), "err", err)
		return nil
	}
	img, err := decodeImage(data)
	if err != nil {
		f.logger.Debug("image not decoded", "ref", shortRef(ref), "err", err)
		return nil
	}
	return img
}

func (f *imageFetcher) read(ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.fetch(ref)
	case strings.HasPrefix(ref, "file://"):
		return readLimited(strings.TrimPrefix(ref, "file://"))
	default:
		path := ref
		if _, err := os.Stat(path); err != nil && f.root != "" {
			path = filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
		}
		return readLimited(path)
	}
}

func (f *imageFetcher) fetch(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return os.ReadFile(path)
}

// decodeDataURL handles data:[<mediatype>];base64,<payload>.
func decodeDataURL(ref string) ([]byte, error) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta := ref[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(ref[comma+1:])
}

// decodeImage decodes any registered format, scales large images down and
// re-encodes the result as 8-bit NRGBA PNG.
func decodeImage(data []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if w > maxImagePixels || h > maxImagePixels {
		if w >= h {
			h = max(1, h*maxImagePixels/w)
			w = maxImagePixels
		} else {
			w = max(1, w*maxImagePixels/h)
			h = maxImagePixels
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return &Image{Data: buf.Bytes(), Width: w, Height: h}, nil
}

// shortRef keeps data URLs out of log lines.
func shortRef(ref string) string {
	if strings.HasPrefix(ref, "data:") || len(ref) > 80 {
		return ref[:min(len(ref), 40)] + "..."
	}
	return ref
}
