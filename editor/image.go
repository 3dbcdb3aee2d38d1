package editor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
)

// DefaultMaxImageWidth bounds the display width of inserted images, in pixels.
const DefaultMaxImageWidth = 600

// ImageRequest is the first phase of an image insertion: either a local file
// or a remote URL. Resolving it never touches the document, so typing can go
// on while a file is read.
type ImageRequest struct {
	Path string
	URL  string
	Alt  string
}

// ResolvedImage is an image ready to be inserted.
type ResolvedImage struct {
	Src   string // data URL for local files, the URL otherwise
	Alt   string
	Width int // natural width in pixels, 0 when unknown
}

// Resolve reads a local file into a data URL or validates a remote URL.
func (r ImageRequest) Resolve(ctx context.Context) (ResolvedImage, error) {
	switch {
	case r.Path != "":
		return r.resolveFile(ctx)
	case r.URL != "":
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ResolvedImage{}, fmt.Errorf("editor: %w: image url %q", richdoc.ErrInvalidParam, r.URL)
		}
		return ResolvedImage{Src: u.String(), Alt: r.Alt}, nil
	}
	return ResolvedImage{}, fmt.Errorf("editor: %w: image request has no path or url", richdoc.ErrInvalidParam)
}

func (r ImageRequest) resolveFile(ctx context.Context) (ResolvedImage, error) {
	if err := ctx.Err(); err != nil {
		return ResolvedImage{}, err
	}
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(r.Path)
		ch <- result{data, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return ResolvedImage{}, ctx.Err()
	case res = <-ch:
	}
	if res.err != nil {
		return ResolvedImage{}, fmt.Errorf("editor: reading image: %w", res.err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.data))
	if err != nil {
		return ResolvedImage{}, fmt.Errorf("editor: %w: image %s: %v", richdoc.ErrUnsupported, r.Path, err)
	}
	return ResolvedImage{
		Src:   content.EncodeDataURL("image/"+format, res.data),
		Alt:   r.Alt,
		Width: cfg.Width,
	}, nil
}

// Fragment builds the <img> element, its display width bounded by maxWidth.
func (img ResolvedImage) Fragment(maxWidth int) content.Fragment {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxImageWidth
	}
	w := maxWidth
	if img.Width > 0 && img.Width < w {
		w = img.Width
	}
	return content.Fragment{content.Element("img", []content.Attr{
		{Key: "src", Val: img.Src},
		{Key: "alt", Val: img.Alt},
		{Key: "width", Val: strconv.Itoa(w)},
		{Key: "style", Val: "max-width: 100%"},
	})}
}
