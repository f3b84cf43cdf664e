package db

import (
	"testing"

	"github.com/BunLabs/MeasurementConverter/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestInsertRun_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run := &models.Run{
		Source:    "https://example.com/recipe",
		Title:     "Best Brownies",
		Language:  "en",
		Elements:  12,
		Matches:   5,
		Converted: 4,
		Ambiguous: 1,
		UnitCounts: map[string]int{
			"°F":   2,
			"cups": 1,
			"tbsp": 1,
		},
	}

	runID, err := db.InsertRun(run)
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("InsertRun() returned 0 run ID")
	}

	got, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got.Source != run.Source {
		t.Errorf("got.Source = %q, want %q", got.Source, run.Source)
	}
	if got.Title != run.Title {
		t.Errorf("got.Title = %q, want %q", got.Title, run.Title)
	}
	if got.Converted != run.Converted {
		t.Errorf("got.Converted = %d, want %d", got.Converted, run.Converted)
	}
	if len(got.UnitCounts) != 3 || got.UnitCounts["°F"] != 2 {
		t.Errorf("got.UnitCounts = %v, want %v", got.UnitCounts, run.UnitCounts)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, source := range []string{"first.html", "second.html", "third.html"} {
		if _, err := db.InsertRun(&models.Run{Source: source}); err != nil {
			t.Fatalf("InsertRun(%q) error = %v", source, err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs, want 2", len(runs))
	}
	if runs[0].Source != "third.html" || runs[1].Source != "second.html" {
		t.Errorf("ListRuns() order = [%s, %s], want newest first", runs[0].Source, runs[1].Source)
	}
}

func TestLatestRunID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.LatestRunID(); err == nil {
		t.Error("LatestRunID() on empty database should error")
	}

	want, err := db.InsertRun(&models.Run{Source: "only.html"})
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	got, err := db.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID() error = %v", err)
	}
	if got != want {
		t.Errorf("LatestRunID() = %d, want %d", got, want)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRun(999); err == nil {
		t.Error("GetRun(999) on empty database should error")
	}
}
