package content

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotDataURL is returned by ParseDataURL for sources that are not data URLs.
var ErrNotDataURL = errors.New("content: not a data URL")

// imageFormats maps embeddable image media types to their short format name.
var imageFormats = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// DataURL is a decoded RFC 2397 data URL.
type DataURL struct {
	MediaType string // lower-case, without parameters
	Data      []byte
}

// IsDataURL reports whether src uses the data: scheme.
func IsDataURL(src string) bool {
	return len(src) >= 5 && strings.EqualFold(src[:5], "data:")
}

// ParseDataURL decodes a data URL.
func ParseDataURL(src string) (DataURL, error) {
	if !IsDataURL(src) {
		return DataURL{}, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(src[5:], ",")
	if !ok {
		return DataURL{}, fmt.Errorf("content: data URL without payload")
	}

	params := strings.Split(header, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType == "" {
		mediaType = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if !isBase64 {
		data, err := url.PathUnescape(payload)
		if err != nil {
			return DataURL{}, fmt.Errorf("content: decoding data URL: %w", err)
		}
		return DataURL{MediaType: mediaType, Data: []byte(data)}, nil
	}

	payload = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return DataURL{}, fmt.Errorf("content: decoding data URL: %w", err)
	}
	return DataURL{MediaType: mediaType, Data: data}, nil
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImageFormat returns the short format name for an embeddable image media
// type ("png", "jpeg", "gif", "webp", "bmp", "tiff"), or "" when unsupported.
func ImageFormat(mediaType string) string {
	return imageFormats[strings.ToLower(mediaType)]
}

// EmbeddableImage reports whether src is a data URL carrying a supported image type.
// Only the header is inspected; the payload is decoded when the image is drawn.
func EmbeddableImage(src string) bool {
	if !IsDataURL(src) {
		return false
	}
	header, _, ok := strings.Cut(src[5:], ",")
	if !ok {
		return false
	}
	mediaType, _, _ := strings.Cut(header, ";")
	return ImageFormat(strings.TrimSpace(mediaType)) != ""
}
