package pageops

import (
	"testing"

	"github.com/phpdave11/gofpdf"
)

func TestStampDefaultsStayInBottomMargin(t *testing.T) {
	const pageW, pageH, bottomMargin = 210.0, 297.0, 20.0
	for _, kind := range []StampKind{StampQR, StampPDF417} {
		s := &Stamp{Kind: kind, Content: "x"}
		s.withDefaults(gofpdf.New("P", "mm", "A4", ""))
		if s.Position != BottomRight {
			t.Fatalf("kind %d: default position %d, want BottomRight", kind, s.Position)
		}
		w, h := s.size()
		x, y := boxPosition(s.Position, pageW, pageH, w, h, s.Margin)
		if y < pageH-bottomMargin || y+h > pageH {
			t.Fatalf("kind %d: stamp spans %.2f..%.2f, content ends at %.2f", kind, y, y+h, pageH-bottomMargin)
		}
		if x < 0 || x+w > pageW {
			t.Fatalf("kind %d: stamp spans x %.2f..%.2f", kind, x, x+w)
		}
	}
}

func TestExplicitCenterIsKept(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	s := &Stamp{Content: "x", Position: Center}
	s.withDefaults(pdf)
	if s.Position != Center {
		t.Fatalf("stamp position %d, want Center", s.Position)
	}
	style := PageNumberStyle{Position: Center}.withDefaults(pdf)
	if style.Position != Center {
		t.Fatalf("page number position %d, want Center", style.Position)
	}
	if got := (PageNumberStyle{}).withDefaults(pdf).Position; got != BottomCenter {
		t.Fatalf("default page number position %d, want BottomCenter", got)
	}
}
