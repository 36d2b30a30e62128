package web

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/hadith-similarity-search/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Formatter turns stored hadith fields into display text. Stored text may
// carry light markup from the source collections; anything beyond simple
// emphasis and line breaks is stripped.
type Formatter struct {
	policy *bluemonday.Policy
}

// NewFormatter creates a Formatter
func NewFormatter() *Formatter {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "b", "i")
	return &Formatter{policy: p}
}

// Text sanitizes stored text and keeps its line breaks
func (f *Formatter) Text(s string) template.HTML {
	clean := f.policy.Sanitize(strings.TrimSpace(s))
	clean = strings.ReplaceAll(clean, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>"))
}

// OptionalText is Text for nullable columns
func (f *Formatter) OptionalText(s *string) template.HTML {
	if s == nil {
		return ""
	}
	return f.Text(*s)
}

// Tradition title-cases a tradition name such as "sunni". A Caser holds
// state, so one is made per call.
func (f *Formatter) Tradition(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// Reference describes where a hadith sits in its collection
func Reference(h models.Hadith) string {
	var parts []string
	if h.Volume != nil {
		parts = append(parts, fmt.Sprintf("Volume %d", *h.Volume))
	}
	if h.Book != nil {
		parts = append(parts, fmt.Sprintf("Book %d", *h.Book))
	}
	if h.Chapter != nil {
		parts = append(parts, fmt.Sprintf("Chapter %d", *h.Chapter))
	}
	if h.Number != nil {
		parts = append(parts, fmt.Sprintf("Hadith %d", *h.Number))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Hadith #%d", h.ID)
	}
	return strings.Join(parts, ", ")
}

// Similarity renders a score as a whole percentage
func Similarity(score *float64) string {
	if score == nil {
		return ""
	}
	pct := *score * 100
	if pct < 0 {
		pct = 0
	}
	return fmt.Sprintf("%.0f%%", pct)
}
