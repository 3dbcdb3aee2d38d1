package render

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/phpdave11/gofpdf"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lvillar/richdoc/content"
)

// MaxImagePixels bounds the long side of embedded images.
const MaxImagePixels = 1024

// pdfImage is an image registered with the backend.
type pdfImage struct {
	name          string
	typ           string
	width, height int
}

// images registers each distinct data URL once per document.
type images struct {
	pdf  *gofpdf.Fpdf
	seen map[string]pdfImage
}

func newImages(pdf *gofpdf.Fpdf) *images {
	return &images{pdf: pdf, seen: make(map[string]pdfImage)}
}

func (im *images) register(src string) (pdfImage, error) {
	if img, ok := im.seen[src]; ok {
		return img, nil
	}
	d, err := content.ParseDataURL(src)
	if err != nil {
		return pdfImage{}, err
	}
	decoded, format, err := image.Decode(bytes.NewReader(d.Data))
	if err != nil {
		return pdfImage{}, fmt.Errorf("render: decoding %s: %w", d.MediaType, err)
	}
	scaled := downscale(decoded, MaxImagePixels)
	if scaled.Bounds().Empty() {
		return pdfImage{}, errors.New("render: empty image")
	}

	var buf bytes.Buffer
	typ := "PNG"
	if format == "jpeg" {
		typ = "JPG"
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85})
	} else {
		err = png.Encode(&buf, scaled)
	}
	if err != nil {
		return pdfImage{}, fmt.Errorf("render: encoding image: %w", err)
	}

	sum := sha1.Sum([]byte(src))
	img := pdfImage{
		name:   "img-" + hex.EncodeToString(sum[:8]),
		typ:    typ,
		width:  scaled.Bounds().Dx(),
		height: scaled.Bounds().Dy(),
	}
	im.pdf.RegisterImageOptionsReader(img.name, gofpdf.ImageOptions{ImageType: typ}, &buf)
	if im.pdf.Err() {
		return pdfImage{}, fmt.Errorf("render: registering image: %w", im.pdf.Error())
	}
	im.seen[src] = img
	return img, nil
}

// downscale copies src into an 8-bit RGBA image whose long side is at most
// limit pixels.
func downscale(src image.Image, limit int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if long := max(w, h); long > limit {
		w = max(1, w*limit/long)
		h = max(1, h*limit/long)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// fit scales an image of iw x ih pixels to fit in a w x h box, keeping its
// aspect ratio.
func fit(iw, ih int, w, h float64) (float64, float64) {
	s := min(w/float64(iw), h/float64(ih))
	return float64(iw) * s, float64(ih) * s
}
