package richdoc

import (
	"fmt"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with 0-255 channels.
type Color struct {
	R, G, B int
}

// ParseColor parses a "#rrggbb" or "#rgb" hex string.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q", ErrInvalidParam, s)
	}
	r, g, b := c.RGB255()
	return Color{R: int(r), G: int(g), B: int(b)}, nil
}

// Hex formats c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Theme holds the colours used when drawing a document.
type Theme struct {
	Text            Color
	Heading         Color
	Muted           Color
	Link            Color
	TableHeaderFill Color
	TableHeaderText Color
	TableBorder     Color
	Watermark       Color
}

// DefaultTheme returns the built-in colour set.
func DefaultTheme() Theme {
	return Theme{
		Text:            Color{0, 0, 0},
		Heading:         Color{33, 33, 33},
		Muted:           Color{110, 110, 110},
		Link:            Color{25, 118, 210},
		TableHeaderFill: Color{63, 81, 181},
		TableHeaderText: Color{255, 255, 255},
		TableBorder:     Color{160, 160, 160},
		Watermark:       Color{220, 220, 220},
	}
}

// ParseTheme overrides DefaultTheme with hex colours keyed by field name
// (text, heading, muted, link, tableHeaderFill, tableHeaderText, tableBorder, watermark).
func ParseTheme(colors map[string]string) (Theme, error) {
	t := DefaultTheme()
	slots := map[string]*Color{
		"text":            &t.Text,
		"heading":         &t.Heading,
		"muted":           &t.Muted,
		"link":            &t.Link,
		"tableheaderfill": &t.TableHeaderFill,
		"tableheadertext": &t.TableHeaderText,
		"tableborder":     &t.TableBorder,
		"watermark":       &t.Watermark,
	}

	keys := make([]string, 0, len(colors))
	for k := range colors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		slot, ok := slots[strings.ToLower(k)]
		if !ok {
			return Theme{}, fmt.Errorf("%w: unknown theme colour %q", ErrInvalidParam, k)
		}
		c, err := ParseColor(colors[k])
		if err != nil {
			return Theme{}, err
		}
		*slot = c
	}
	return t, nil
}
