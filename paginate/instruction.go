package paginate

import "github.com/lvillar/richdoc"

// OpKind is the kind of a draw instruction.
type OpKind uint8

const (
	TextOp  OpKind = iota // one line of text
	RectOp                // rectangle, bordered and/or filled
	LineOp                // straight line from (X, Y) to (X+W, Y+H)
	ImageOp               // embedded image box
)

func (k OpKind) String() string {
	switch k {
	case TextOp:
		return "text"
	case RectOp:
		return "rect"
	case LineOp:
		return "line"
	case ImageOp:
		return "image"
	}
	return "unknown"
}

// Font selects a face for text instructions. Size is in points.
type Font struct {
	Family string
	Style  string // "", "B", "I", "BI"; "U" underlines
	Size   float64
}

// Instruction is a page-relative drawing operation for a rendering backend.
// Coordinates are in the layout unit with the origin at the top-left corner.
type Instruction struct {
	Kind OpKind
	X    float64
	Y    float64
	W    float64
	H    float64

	Text  string // TextOp
	Font  Font   // TextOp
	Align string // TextOp: "L", "C" or "R" within [X, X+W]
	Color richdoc.Color

	Fill      *richdoc.Color // RectOp
	Border    bool           // RectOp
	LineWidth float64        // RectOp, LineOp

	Src string // ImageOp: data URL
	Alt string // ImageOp: drawn as a placeholder if the backend cannot decode Src
}

// Bottom is the lowest vertical offset the instruction reaches.
func (in Instruction) Bottom() float64 {
	if in.Kind == LineOp && in.H < 0 {
		return in.Y
	}
	return in.Y + in.H
}

// Page is the list of draw instructions of one page.
type Page struct {
	Index        int // 0-based
	Instructions []Instruction
}

// Block records how one top-level construct was laid out.
type Block struct {
	Tag       string  // element tag, "#text" for bare text runs
	StartPage int     // page index the block started on
	EndPage   int     // page index the block ended on
	Lines     int     // text lines drawn
	Advance   float64 // total vertical advance, including trailing spacing
}

// Result is the outcome of one pagination run.
type Result struct {
	Pages  []Page
	Blocks []Block
	Phase  Phase // Done once Paginate has returned
}
