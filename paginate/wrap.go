package paginate

import (
	"strings"

	"github.com/rivo/uniseg"
)

const eps = 1e-9

// Wrap breaks text into lines no wider than width. Newlines force a break;
// other whitespace runs collapse to single spaces. A word wider than a whole
// line is split between grapheme clusters.
func Wrap(m Measurer, text string, width float64, f Font) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if m.StringWidth(candidate, f) <= width+eps {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			if m.StringWidth(w, f) <= width+eps {
				line = w
				continue
			}
			chunks := breakWord(m, w, width, f)
			lines = append(lines, chunks[:len(chunks)-1]...)
			line = chunks[len(chunks)-1]
		}
		lines = append(lines, line)
	}
	return lines
}

func breakWord(m Measurer, word string, width float64, f Font) []string {
	var out []string
	cur := ""
	gr := uniseg.NewGraphemes(word)
	for gr.Next() {
		c := gr.Str()
		if cur != "" && m.StringWidth(cur+c, f) > width+eps {
			out = append(out, cur)
			cur = c
			continue
		}
		cur += c
	}
	return append(out, cur)
}

// collapse normalises inline whitespace the way markup is displayed: runs of
// spaces, tabs and newlines become one space, except forced breaks ("\n"
// produced by <br>) which are kept by the caller.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
