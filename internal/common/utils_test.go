package common

import "testing"

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://example.com  ", "https://example.com"},
		{"https://example.com,", "https://example.com"},
		{"(https://example.com)", "https://example.com"},
		{"[recipe](https://example.com/pie)", "https://example.com/pie"},
		{"https://example.com/path.", "https://example.com/path"},
	}

	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	valid, invalid := SanitizeAndValidateURLs([]string{
		"https://example.com/recipes",
		"ftp://example.com",
		"not a url",
		"https://ok.example.org,",
	})

	if len(valid) != 2 {
		t.Errorf("valid = %v, want 2 entries", valid)
	}
	if len(invalid) != 2 {
		t.Errorf("invalid = %v, want 2 entries", invalid)
	}
}

func TestSavePathFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "example_com.html"},
		{"https://example.com/recipes/pie", "example_com-recipes-pie.html"},
		{"https://docs.example.com/guide.html", "docs_example_com-guide_html.html"},
	}

	for _, tt := range tests {
		if got := SavePathFor(tt.in); got != tt.want {
			t.Errorf("SavePathFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
