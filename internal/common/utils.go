// Package common holds helpers shared by the CLI actions.
package common

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste
// issues: surrounding whitespace, trailing punctuation, markdown link
// wrappers.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// "[click here](https://example.com)" -> "https://example.com"
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, char := range []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"} {
		cleaned = strings.TrimSuffix(cleaned, char)
	}
	for _, char := range []string{"(", "[", "<", "\"", "'"} {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

var urlPattern = regexp.MustCompile(`^https?://[a-zA-Z0-9][-a-zA-Z0-9.]*[a-zA-Z0-9](/[^\s]*)?$`)

// SanitizeAndValidateURLs sanitizes all URLs and splits them into valid
// and invalid sets. Invalid URLs fail validation even after cleanup.
func SanitizeAndValidateURLs(urls []string) ([]string, []string) {
	sanitized := make([]string, 0, len(urls))
	var invalidURLs []string

	for _, rawURL := range urls {
		cleaned := SanitizeURL(rawURL)

		if cleaned == "" || strings.Contains(cleaned, " ") || !urlPattern.MatchString(cleaned) {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}

		parsed, err := url.Parse(cleaned)
		if err != nil || parsed.Host == "" {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}
		if strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
			invalidURLs = append(invalidURLs, rawURL)
			continue
		}

		sanitized = append(sanitized, cleaned)
	}

	return sanitized, invalidURLs
}

// SavePathFor generates a filesystem-friendly output name from a URL.
// Example: https://example.com/recipes/pie -> example_com-recipes-pie.html
func SavePathFor(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		safe := strings.NewReplacer("https://", "", "http://", "", "/", "_").Replace(rawURL)
		return fmt.Sprintf("%s.html", safe)
	}

	host := strings.ReplaceAll(parsedURL.Host, ".", "_")

	// Keep the path in the name to avoid collisions between pages on the
	// same host.
	path := strings.Trim(parsedURL.Path, "/")
	path = strings.ReplaceAll(path, "/", "-")
	path = strings.ReplaceAll(path, ".", "_")

	if path != "" {
		return fmt.Sprintf("%s-%s.html", host, path)
	}
	return fmt.Sprintf("%s.html", host)
}
