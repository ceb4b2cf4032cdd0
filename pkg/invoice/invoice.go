package invoice

import (
	"strings"
)

// PageSeparator joins the text of consecutive pages
const PageSeparator = "\n\n"

// Page holds the raw text of a single PDF page
type Page struct {
	Number int    `json:"number"` // 1-based, in file order
	Text   string `json:"text"`
}

// Document represents an invoice PDF after text extraction
type Document struct {
	Path  string `json:"path"`
	Pages []Page `json:"pages"`
}

// AddPage appends the next page in file order
func (d *Document) AddPage(text string) {
	d.Pages = append(d.Pages, Page{Number: len(d.Pages) + 1, Text: text})
}

// PageCount returns the number of pages read
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Text returns all page texts joined by PageSeparator
func (d *Document) Text() string {
	texts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, PageSeparator)
}

// IsBlank reports whether no page yielded any visible text
func (d *Document) IsBlank() bool {
	return strings.TrimSpace(d.Text()) == ""
}
