// Package content inspects page HTML before it is synced or imported.
package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Analysis is what the sync payload needs to know about a page body.
type Analysis struct {
	Text      string
	WordCount int
	Headings  []string
	HasSchema bool
}

// Analyze parses an HTML fragment and extracts plain text, headings and
// whether it embeds JSON-LD structured data.
func Analyze(html string) (*Analysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	a := &Analysis{Headings: []string{}}

	a.HasSchema = doc.Find(`script[type="application/ld+json"]`).Length() > 0

	doc.Find("h1, h2, h3").Each(func(i int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			a.Headings = append(a.Headings, text)
		}
	})

	doc.Find("script, style, noscript").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	a.Text = collapse(doc.Find("body").Text())
	a.WordCount = len(strings.Fields(a.Text))

	return a, nil
}

// FirstHeading returns the text of the first h1 in html, or "".
func FirstHeading(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return collapse(doc.Find("h1").First().Text())
}

// HasSchema reports whether html embeds JSON-LD structured data.
func HasSchema(html string) bool {
	if !strings.Contains(html, "ld+json") {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(`script[type="application/ld+json"]`).Length() > 0
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
