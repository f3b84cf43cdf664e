package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/BunLabs/MeasurementConverter/pkg/dom"
)

func parseDoc(t *testing.T, body string) *dom.Document {
	t.Helper()
	d, err := dom.Parse(strings.NewReader("<html><head></head><body>" + body + "</body></html>"))
	if err != nil {
		t.Fatalf("dom.Parse() error = %v", err)
	}
	return d
}

func spans(d *dom.Document) *goquery.Selection {
	return d.Find("span.converted-measurement")
}

func TestProcess_Fahrenheit(t *testing.T) {
	d := parseDoc(t, "<p>It's 98.6 F outside</p>")

	c := Process(d)
	if c.Converted != 1 {
		t.Fatalf("Process() converted %d tokens, want 1", c.Converted)
	}

	s := spans(d)
	if s.Length() != 1 {
		t.Fatalf("document has %d converted spans, want 1", s.Length())
	}
	if got := s.Text(); got != "37 °C" {
		t.Errorf("visible text = %q, want %q", got, "37 °C")
	}
	if title, _ := s.Attr("title"); title != "98.6 F" {
		t.Errorf("title = %q, want original %q", title, "98.6 F")
	}
	if text := d.Find("p").Text(); !strings.HasPrefix(text, "It's ") || !strings.HasSuffix(text, " outside") {
		t.Errorf("surrounding text damaged: %q", text)
	}
}

func TestProcess_AmbiguousDegrees(t *testing.T) {
	d := parseDoc(t, "<p>Preheat to 350°</p>")

	Process(d)
	s := spans(d)
	if s.Length() != 1 {
		t.Fatalf("document has %d converted spans, want 1", s.Length())
	}
	if got := s.Text(); got != "350°" {
		t.Errorf("visible text = %q, want original %q", got, "350°")
	}

	title, _ := s.Attr("title")
	for _, line := range []string{"350 °F = 177 °C", "350 °C = 662 °F"} {
		if !strings.Contains(title, line) {
			t.Errorf("title = %q, missing reading %q", title, line)
		}
	}
}

func TestProcess_FractionalVolume(t *testing.T) {
	d := parseDoc(t, "<p>Add ½ cup sugar and 2 tbsp butter</p>")

	c := Process(d)
	if c.Converted != 2 {
		t.Fatalf("Process() converted %d tokens, want 2", c.Converted)
	}

	s := spans(d)
	if got := s.First().Text(); got != "120 mL" {
		t.Errorf("first visible text = %q, want %q", got, "120 mL")
	}
	if title, _ := s.First().Attr("title"); title != "½ cup = 120 mL" {
		t.Errorf("first title = %q, want %q", title, "½ cup = 120 mL")
	}
	if got := s.Last().Text(); got != "30 mL" {
		t.Errorf("second visible text = %q, want %q", got, "30 mL")
	}
}

func TestProcess_CelsiusLeftAlone(t *testing.T) {
	d := parseDoc(t, "<p>water boils at 100°C</p>")

	c := Process(d)
	if c.Converted != 0 {
		t.Errorf("Process() converted %d tokens, want 0", c.Converted)
	}
	if s := spans(d); s.Length() != 0 {
		t.Errorf("document has %d converted spans, want 0", s.Length())
	}
	if text := d.Find("p").Text(); text != "water boils at 100°C" {
		t.Errorf("text = %q, want unchanged", text)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	d := parseDoc(t, "<p>Set the oven to 350°F, add 1 ½ cups flour and 450 degrees later</p>")

	Process(d)
	first, err := d.Html()
	if err != nil {
		t.Fatalf("Html() error = %v", err)
	}

	c := Process(d)
	if c.Converted != 0 || c.Matches != 0 {
		t.Errorf("second pass converted %d / matched %d, want 0 / 0", c.Converted, c.Matches)
	}

	second, err := d.Html()
	if err != nil {
		t.Fatalf("Html() error = %v", err)
	}
	if first != second {
		t.Errorf("second pass changed the document:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestProcess_SkipsScriptAndEditable(t *testing.T) {
	body := `<script>var t = "350 F";</script><div contenteditable>type 212 F here</div>`
	d := parseDoc(t, body)

	c := Process(d)
	if c.Converted != 0 {
		t.Errorf("Process() converted %d tokens inside excluded regions, want 0", c.Converted)
	}
	html, _ := d.Html()
	if !strings.Contains(html, `var t = "350 F";`) {
		t.Errorf("script content altered: %s", html)
	}
}

func TestProcess_SkipsExistingMarkers(t *testing.T) {
	d := parseDoc(t, `<p><span class="converted-measurement" title="212 F">100 °C</span></p>`)

	c := Process(d)
	if c.Matches != 0 {
		t.Errorf("Process() matched %d tokens inside rendered output, want 0", c.Matches)
	}
	if s := spans(d); s.Length() != 1 {
		t.Errorf("document has %d converted spans, want the 1 preexisting", s.Length())
	}
}

func TestProcess_RoundTrip(t *testing.T) {
	originals := []string{"72 F", "2 cups", "1 tsp"}
	d := parseDoc(t, "<p>at 72 F, mix 2 cups broth with 1 tsp salt</p>")

	Process(d)
	var titles []string
	spans(d).Each(func(_ int, s *goquery.Selection) {
		title, _ := s.Attr("title")
		titles = append(titles, title)
	})

	if len(titles) != len(originals) {
		t.Fatalf("got %d converted spans, want %d", len(titles), len(originals))
	}
	for i, original := range originals {
		if !strings.Contains(titles[i], original) {
			t.Errorf("title %q does not preserve original %q", titles[i], original)
		}
	}
}

func TestScheduler_IncrementalProcessing(t *testing.T) {
	d := parseDoc(t, "<p>starts at 32 F</p>")

	s := Attach(d, nil)
	if s.Totals.Converted != 1 {
		t.Fatalf("initial pass converted %d tokens, want 1", s.Totals.Converted)
	}

	if err := d.AppendHTML("body", "<p>later it hit 212 F</p>"); err != nil {
		t.Fatalf("AppendHTML() error = %v", err)
	}
	if s.Totals.Converted != 2 {
		t.Errorf("after append, total converted = %d, want 2", s.Totals.Converted)
	}
	if n := spans(d).Length(); n != 2 {
		t.Errorf("document has %d converted spans, want 2", n)
	}

	// Content with nothing to convert leaves the totals alone.
	if err := d.AppendHTML("body", "<p>no measurements here</p>"); err != nil {
		t.Fatalf("AppendHTML() error = %v", err)
	}
	if s.Totals.Converted != 2 {
		t.Errorf("after plain append, total converted = %d, want 2", s.Totals.Converted)
	}
}

func TestScheduler_IgnoresOwnWrites(t *testing.T) {
	d := parseDoc(t, "<p>empty</p>")
	s := Attach(d, nil)

	// Count every notification delivered after the scheduler is attached.
	// The scheduler's rewrites do reach other observers, so the guard being
	// broken would show up here as extra batches (or as unbounded
	// recursion inside AppendHTML).
	var batches int
	d.Observe(func([]dom.Mutation) { batches++ })

	if err := d.AppendHTML("body", "<p>it was 98.6 F then</p>"); err != nil {
		t.Fatalf("AppendHTML() error = %v", err)
	}

	if s.Totals.Converted != 1 {
		t.Errorf("total converted = %d, want 1", s.Totals.Converted)
	}
	// One external append plus exactly one rewrite by the scheduler.
	if batches != 2 {
		t.Errorf("observed %d mutation batches, want 2", batches)
	}
}

func TestScheduler_CharacterData(t *testing.T) {
	d := parseDoc(t, "<p id=temp>unknown</p>")
	s := Attach(d, nil)

	if err := d.SetText("#temp", "currently 451 degrees F"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}

	if s.Totals.Converted != 1 {
		t.Errorf("total converted = %d, want 1", s.Totals.Converted)
	}
	if got := spans(d).Text(); got != "233 °C" {
		t.Errorf("visible text = %q, want %q", got, "233 °C")
	}
}

func TestScheduler_Detach(t *testing.T) {
	d := parseDoc(t, "<p>quiet</p>")
	s := Attach(d, nil)
	s.Detach()

	if err := d.AppendHTML("body", "<p>now 212 F</p>"); err != nil {
		t.Fatalf("AppendHTML() error = %v", err)
	}
	if s.Totals.Converted != 0 {
		t.Errorf("detached scheduler converted %d tokens, want 0", s.Totals.Converted)
	}
}
