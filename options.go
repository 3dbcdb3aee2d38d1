package richdoc

import (
	"fmt"
	"strings"
)

// Measurement units accepted by WithUnit.
const (
	UnitPoint      = "pt"
	UnitMillimeter = "mm"
	UnitCentimeter = "cm"
	UnitInch       = "in"
)

// Page orientations accepted by WithOrientation.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Named page sizes accepted by WithPageSize.
const (
	PageSizeA3     = "A3"
	PageSizeA4     = "A4"
	PageSizeA5     = "A5"
	PageSizeLetter = "Letter"
	PageSizeLegal  = "Legal"
)

// page sizes in points, portrait
var pageSizes = map[string][2]float64{
	"a3":      {841.89, 1190.55},
	"a4":      {595.28, 841.89},
	"a5":      {420.94, 595.28},
	"letter":  {612, 792},
	"legal":   {612, 1008},
	"tabloid": {792, 1224},
}

var unitScale = map[string]float64{
	UnitPoint:      1,
	UnitMillimeter: 72 / 25.4,
	UnitCentimeter: 72 / 2.54,
	UnitInch:       72,
}

// Option is a functional option for configuring page layout via NewConfig.
type Option func(*Config)

// Config is the resolved page layout shared by the paginator and the PDF backend.
// Dimensions are expressed in Unit; font sizes are always in points.
type Config struct {
	Orientation string
	Unit        string
	PageSize    string

	PageWidth  float64
	PageHeight float64

	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	FontFamily string
	FontSize   float64
	LineHeight float64
	FontDir    string

	Theme Theme

	customW, customH float64
	marginsSet       bool
	themeSet         bool
}

// WithOrientation sets the page orientation.
// Use OrientationPortrait ("portrait") or OrientationLandscape ("landscape").
func WithOrientation(orientation string) Option {
	return func(c *Config) {
		c.Orientation = orientation
	}
}

// WithUnit sets the measurement unit for page dimensions and layout.
// Use UnitPoint, UnitMillimeter, UnitCentimeter, or UnitInch.
func WithUnit(unit string) Option {
	return func(c *Config) {
		c.Unit = unit
	}
}

// WithPageSize sets the page size by name.
// Use PageSizeA3, PageSizeA4, PageSizeA5, PageSizeLetter, PageSizeLegal, or "Tabloid".
func WithPageSize(size string) Option {
	return func(c *Config) {
		c.PageSize = size
	}
}

// WithPageSizeCustom sets a custom page size in the configured unit.
func WithPageSizeCustom(width, height float64) Option {
	return func(c *Config) {
		c.customW, c.customH = width, height
	}
}

// WithMargins sets the page margins in the configured unit.
func WithMargins(top, right, bottom, left float64) Option {
	return func(c *Config) {
		c.MarginTop, c.MarginRight, c.MarginBottom, c.MarginLeft = top, right, bottom, left
		c.marginsSet = true
	}
}

// WithFontFamily sets the body font family (Helvetica, Times or Courier).
func WithFontFamily(family string) Option {
	return func(c *Config) {
		c.FontFamily = family
	}
}

// WithFontSize sets the body font size in points.
func WithFontSize(size float64) Option {
	return func(c *Config) {
		c.FontSize = size
	}
}

// WithLineHeight sets the body line height in the configured unit.
func WithLineHeight(h float64) Option {
	return func(c *Config) {
		c.LineHeight = h
	}
}

// WithFontDir sets the directory where font files are located.
func WithFontDir(dir string) Option {
	return func(c *Config) {
		c.FontDir = dir
	}
}

// WithTheme sets the colours used for headings, tables and decorations.
func WithTheme(t Theme) Option {
	return func(c *Config) {
		c.Theme = t
		c.themeSet = true
	}
}

// NewConfig resolves a page layout from functional options.
// If no options are specified, defaults to portrait A4 in millimetres with
// 20 mm margins, Helvetica 11 pt and a 6 mm line height.
//
// Example:
//
//	cfg, err := richdoc.NewConfig(
//	    richdoc.WithPageSize(richdoc.PageSizeLetter),
//	    richdoc.WithUnit(richdoc.UnitInch),
//	)
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Orientation: OrientationPortrait,
		Unit:        UnitMillimeter,
		PageSize:    PageSizeA4,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig returns the layout produced by NewConfig without options.
func DefaultConfig() *Config {
	c, err := NewConfig()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Config) resolve() error {
	c.Unit = strings.ToLower(c.Unit)
	if _, ok := unitScale[c.Unit]; !ok {
		return NewError("NewConfig", fmt.Errorf("%w: unit %q", ErrInvalidParam, c.Unit))
	}

	switch strings.ToLower(c.Orientation) {
	case "p", OrientationPortrait:
		c.Orientation = OrientationPortrait
	case "l", OrientationLandscape:
		c.Orientation = OrientationLandscape
	default:
		return NewError("NewConfig", fmt.Errorf("%w: orientation %q", ErrInvalidParam, c.Orientation))
	}

	if c.customW > 0 || c.customH > 0 {
		c.PageWidth, c.PageHeight = c.customW, c.customH
		c.PageSize = ""
	} else {
		dims, ok := pageSizes[strings.ToLower(c.PageSize)]
		if !ok {
			return NewError("NewConfig", fmt.Errorf("%w: page size %q", ErrInvalidParam, c.PageSize))
		}
		c.PageWidth = dims[0] / c.Scale()
		c.PageHeight = dims[1] / c.Scale()
	}
	if c.Orientation == OrientationLandscape && c.PageWidth < c.PageHeight {
		c.PageWidth, c.PageHeight = c.PageHeight, c.PageWidth
	}

	if !c.marginsSet {
		m := c.FromMM(20)
		c.MarginTop, c.MarginRight, c.MarginBottom, c.MarginLeft = m, m, m, m
	}
	if c.FontFamily == "" {
		c.FontFamily = "Helvetica"
	}
	if c.FontSize == 0 {
		c.FontSize = 11
	}
	if c.LineHeight == 0 {
		c.LineHeight = c.FromMM(6)
	}
	if !c.themeSet {
		c.Theme = DefaultTheme()
	}
	return nil
}

// Validate reports whether the layout leaves a usable content area.
func (c *Config) Validate() error {
	switch {
	case c.PageWidth <= 0 || c.PageHeight <= 0:
		return NewError("Validate", fmt.Errorf("%w: page size %.2fx%.2f", ErrInvalidParam, c.PageWidth, c.PageHeight))
	case c.MarginTop < 0 || c.MarginRight < 0 || c.MarginBottom < 0 || c.MarginLeft < 0:
		return NewError("Validate", fmt.Errorf("%w: negative margin", ErrInvalidParam))
	case c.ContentWidth() <= 0 || c.ContentHeight() <= 0:
		return NewError("Validate", fmt.Errorf("%w: margins leave no content area", ErrInvalidParam))
	case c.FontSize <= 0:
		return NewError("Validate", fmt.Errorf("%w: font size %.2f", ErrInvalidParam, c.FontSize))
	case c.LineHeight <= 0 || c.LineHeight > c.ContentHeight():
		return NewError("Validate", fmt.Errorf("%w: line height %.2f", ErrInvalidParam, c.LineHeight))
	}
	return nil
}

// Scale returns the number of points per configured unit.
func (c *Config) Scale() float64 {
	if s, ok := unitScale[c.Unit]; ok {
		return s
	}
	return unitScale[UnitMillimeter]
}

// FromMM converts a length in millimetres to the configured unit.
func (c *Config) FromMM(v float64) float64 {
	return v * unitScale[UnitMillimeter] / c.Scale()
}

// FromPt converts a length in points to the configured unit.
func (c *Config) FromPt(v float64) float64 {
	return v / c.Scale()
}

// ContentWidth is the page width minus the left and right margins.
func (c *Config) ContentWidth() float64 {
	return c.PageWidth - c.MarginLeft - c.MarginRight
}

// ContentHeight is the page height minus the top and bottom margins.
func (c *Config) ContentHeight() float64 {
	return c.PageHeight - c.MarginTop - c.MarginBottom
}

// Bound is the lowest vertical offset content may reach on a page.
func (c *Config) Bound() float64 {
	return c.PageHeight - c.MarginBottom
}
