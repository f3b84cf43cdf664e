// Package meta enriches a fetched page with descriptive metadata recorded
// alongside conversion runs: readability fields and a language guess.
package meta

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// PageMeta is what a run records about the page it converted.
type PageMeta struct {
	Title    string
	Author   string
	Excerpt  string
	SiteName string
	Language string // ISO 639-1 if detected, else "unknown"
}

// Languages considered when guessing the page language. Measurement words
// are English, so the guess is informational, not a gate.
var detector = lingua.NewLanguageDetectorBuilder().
	FromLanguages(
		lingua.English,
		lingua.Spanish,
		lingua.French,
		lingua.German,
		lingua.Portuguese,
		lingua.Italian,
		lingua.Dutch,
	).
	Build()

// Describe extracts metadata from raw page HTML. It never fails: pages
// readability cannot parse come back with only the language field set, and
// text too short to classify reports "unknown".
func Describe(rawURL, htmlStr string) *PageMeta {
	pm := &PageMeta{Language: "unknown"}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		pageURL = &url.URL{}
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(htmlStr), pageURL)
	if err == nil {
		pm.Title = article.Title
		pm.Author = article.Byline
		pm.Excerpt = article.Excerpt
		pm.SiteName = article.SiteName
		pm.Language = detectLanguage(article.TextContent)
	}

	return pm
}

func detectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 40 {
		return "unknown"
	}
	// A sample is plenty for classification and keeps detection cheap.
	if len(text) > 4000 {
		cut := 4000
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "unknown"
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
