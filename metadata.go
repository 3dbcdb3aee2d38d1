package richdoc

import (
	"strings"
	"time"
)

// Metadata describes the document being rendered. It is supplied by the
// owner of the content at the render boundary.
type Metadata struct {
	Title        string
	Author       string
	Status       string
	Priority     string
	Category     string
	Version      string
	LastEditedBy string
	LastEditedAt time.Time
}

// Filename derives the output file name from the title with every
// non-alphanumeric character stripped.
func (m Metadata) Filename() string {
	var b strings.Builder
	for _, r := range m.Title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "document.pdf"
	}
	return b.String() + ".pdf"
}

// Fields returns the non-empty metadata lines in display order, excluding the title.
func (m Metadata) Fields() []string {
	var lines []string
	join := func(parts ...string) {
		var kept []string
		for i := 0; i+1 < len(parts); i += 2 {
			if parts[i+1] != "" {
				kept = append(kept, parts[i]+": "+parts[i+1])
			}
		}
		if len(kept) > 0 {
			lines = append(lines, strings.Join(kept, " | "))
		}
	}
	join("Author", m.Author, "Status", m.Status, "Priority", m.Priority)
	join("Category", m.Category, "Version", m.Version)

	edited := ""
	if !m.LastEditedAt.IsZero() {
		edited = m.LastEditedAt.Format("2006-01-02 15:04")
	}
	join("Last edited by", m.LastEditedBy, "Last edited at", edited)
	return lines
}
