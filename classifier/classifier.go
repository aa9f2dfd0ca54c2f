package classifier

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"helpsync/types"
)

// TextCleaner converts an HTML body to the text used for the empty check
type TextCleaner interface {
	Clean(html string) string
}

// Classifier separates production articles from test artifacts and empty stubs
type Classifier struct {
	cleaner TextCleaner
}

// New creates a classifier. The cleaner is only used for articles whose
// CleanedBody has not been filled by the normalizer; nil trims the raw body.
func New(cleaner TextCleaner) *Classifier {
	return &Classifier{cleaner: cleaner}
}

// Classify runs both checks. It never fails.
func (c *Classifier) Classify(article types.SourceArticle) types.ClassificationResult {
	var result types.ClassificationResult

	if ok, reason := c.DetectTest(article); ok {
		result.IsTestArticle = true
		result.Reasons = append(result.Reasons, reason)
	}
	if ok, reason := c.DetectEmpty(article); ok {
		result.IsEmpty = true
		result.Reasons = append(result.Reasons, reason)
	}
	return result
}

// DetectTest applies the test-artifact rules in order; the first match supplies the reason
func (c *Classifier) DetectTest(article types.SourceArticle) (bool, string) {
	title := strings.ToLower(strings.TrimSpace(article.Name))
	text := c.text(article)
	body := strings.ToLower(truncate(text, BodyScanLimit))
	id := strings.ToLower(strings.TrimSpace(article.ID))

	for _, kw := range TestKeywords {
		if strings.Contains(title, kw) {
			return true, fmt.Sprintf("Contains test-related word '%s' in the title", kw)
		}
	}

	for _, kw := range TestKeywords {
		if strings.Contains(body, kw) {
			return true, fmt.Sprintf("Contains test-related word '%s' in the content", kw)
		}
	}

	if ok, reason := matchID(id); ok {
		return true, reason
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < MinBodyLength {
		return true, fmt.Sprintf("Content too short (%d characters)", n)
	}

	for _, word := range FillerWords {
		if startsWithWord(title, word) {
			return true, fmt.Sprintf("Title starts with filler word '%s'", word)
		}
	}

	if run := repeatedRun(title, MinRepeatedRun); run != "" {
		return true, fmt.Sprintf("Title contains repeated characters '%s'", run)
	}

	for _, p := range KeyboardPatterns {
		if strings.Contains(title, p) {
			return true, fmt.Sprintf("Title contains keyboard pattern '%s'", p)
		}
	}

	return false, ""
}

// DetectEmpty reports articles without usable content
func (c *Classifier) DetectEmpty(article types.SourceArticle) (bool, string) {
	if strings.TrimSpace(article.RawBody) == "" {
		return true, "Article body is empty"
	}

	cleaned := strings.TrimSpace(c.cleaned(article))
	if cleaned == "" {
		return true, "Article body is only whitespace after cleaning"
	}
	if n := utf8.RuneCountInString(cleaned); n < MinCleanedLength {
		return true, fmt.Sprintf("Cleaned content too short (%d characters)", n)
	}
	return false, ""
}

// Filter splits articles into production and excluded sets, preserving order
func (c *Classifier) Filter(articles []types.SourceArticle) ([]types.SourceArticle, []types.ExcludedArticle) {
	production := make([]types.SourceArticle, 0, len(articles))
	var excluded []types.ExcludedArticle

	for _, a := range articles {
		result := c.Classify(a)
		if result.Excluded() {
			excluded = append(excluded, types.ExcludedArticle{Article: a, Classification: result})
			continue
		}
		production = append(production, a)
	}
	return production, excluded
}

// text is the body searched for keywords: cleaned when available, raw otherwise
func (c *Classifier) text(article types.SourceArticle) string {
	if article.CleanedBody != "" {
		return article.CleanedBody
	}
	return article.RawBody
}

func (c *Classifier) cleaned(article types.SourceArticle) string {
	if article.CleanedBody != "" {
		return article.CleanedBody
	}
	if c.cleaner == nil {
		return article.RawBody
	}
	return c.cleaner.Clean(article.RawBody)
}

func matchID(id string) (bool, string) {
	if id == "" {
		return false, ""
	}
	if testThenDigits.MatchString(id) || digitsThenTest.MatchString(id) {
		return true, fmt.Sprintf("ID '%s' matches a test pattern", id)
	}
	for _, prefix := range suspiciousIDPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true, fmt.Sprintf("ID '%s' starts with '%s'", id, prefix)
		}
	}
	for _, seq := range suspiciousIDSequences {
		if strings.Contains(id, seq) {
			return true, fmt.Sprintf("ID '%s' contains sequence '%s'", id, seq)
		}
	}
	return false, ""
}

// startsWithWord matches word at the start of s followed by a non-alphanumeric rune or the end
func startsWithWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	rest := s[len(word):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// repeatedRun returns the first run of at least n identical non-space runes
func repeatedRun(s string, n int) string {
	var prev rune
	count := 0
	for _, r := range s {
		if r == prev && !unicode.IsSpace(r) {
			count++
		} else {
			prev = r
			count = 1
		}
		if count >= n && !unicode.IsSpace(r) {
			return strings.Repeat(string(r), n)
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
