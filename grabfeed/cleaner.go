package grabfeed

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// HTMLCleaner turns article bodies into markdown
type HTMLCleaner struct {
	sanitizer *bluemonday.Policy
	strict    *bluemonday.Policy
	convert   func(html string) (string, error)
}

// NewHTMLCleaner creates a cleaner using html-to-markdown
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		sanitizer: bluemonday.UGCPolicy(),
		strict:    bluemonday.StrictPolicy(),
		convert: func(html string) (string, error) {
			return htmltomarkdown.ConvertString(html)
		},
	}
}

// ToMarkdown sanitizes html and converts it to markdown
func (c *HTMLCleaner) ToMarkdown(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	markdown, err := c.convert(c.sanitizer.Sanitize(html))
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// PlainText extracts visible text, falling back to tag stripping
func (c *HTMLCleaner) PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("script, style, noscript").Remove()
		if text := normalizeWhitespace(doc.Text()); text != "" {
			return text
		}
	}
	return normalizeWhitespace(c.strict.Sanitize(html))
}

// Clean converts to markdown and degrades to plain text on any error
func (c *HTMLCleaner) Clean(html string) string {
	markdown, err := c.ToMarkdown(html)
	if err != nil {
		return c.PlainText(html)
	}
	return markdown
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
