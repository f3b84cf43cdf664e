package meta

import (
	"strings"
	"testing"
)

const englishPage = `<html><head><title>Roast Chicken</title></head><body>
<article>
<h1>Roast Chicken</h1>
<p>Preheat the oven and season the chicken generously with salt and pepper.
Roast until the skin is golden and the juices run clear, then rest the bird
before carving. Serve with potatoes and a simple green salad on the side.</p>
<p>This straightforward method works for birds of any reasonable size and
needs nothing more than a heavy pan and a hot oven to produce dinner.</p>
</article>
</body></html>`

func TestDescribe_EnglishPage(t *testing.T) {
	pm := Describe("https://example.com/roast", englishPage)

	if pm.Title != "Roast Chicken" {
		t.Errorf("Title = %q, want %q", pm.Title, "Roast Chicken")
	}
	if pm.Language != "en" {
		t.Errorf("Language = %q, want %q", pm.Language, "en")
	}
}

func TestDescribe_NeverFails(t *testing.T) {
	for _, htmlStr := range []string{"", "not html at all", "<html></html>"} {
		pm := Describe("https://example.com", htmlStr)
		if pm == nil {
			t.Fatalf("Describe(%q) = nil", htmlStr)
		}
		if pm.Language != "unknown" {
			t.Errorf("Describe(%q).Language = %q, want unknown", htmlStr, pm.Language)
		}
	}
}

func TestDetectLanguage_ShortTextIsUnknown(t *testing.T) {
	if got := detectLanguage("hi"); got != "unknown" {
		t.Errorf("detectLanguage(short) = %q, want unknown", got)
	}
}

func TestDescribe_BadURL(t *testing.T) {
	pm := Describe("://not-a-url", englishPage)
	if pm == nil || !strings.Contains(pm.Title, "Roast") {
		t.Errorf("Describe() with bad URL = %+v, want metadata anyway", pm)
	}
}
