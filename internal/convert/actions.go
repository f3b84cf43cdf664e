// Package convert implements the convert CLI command: fetch or read HTML,
// run the measurement pipeline over it, and record what happened.
package convert

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/BunLabs/MeasurementConverter/internal/common"
	"github.com/BunLabs/MeasurementConverter/models"
	"github.com/BunLabs/MeasurementConverter/pkg/caching"
	"github.com/BunLabs/MeasurementConverter/pkg/db"
	"github.com/BunLabs/MeasurementConverter/pkg/dom"
	"github.com/BunLabs/MeasurementConverter/pkg/fetcher"
	"github.com/BunLabs/MeasurementConverter/pkg/meta"
	"github.com/BunLabs/MeasurementConverter/pkg/pipeline"
	"github.com/BunLabs/MeasurementConverter/pkg/storage"
	"github.com/BunLabs/MeasurementConverter/pkg/tally"
)

// Job defines a task for a worker to perform.
type Job struct {
	URL string
}

// Result holds the outcome of a processed job.
type Result struct {
	URL       string         `yaml:"url"`
	FilePath  string         `yaml:"file_path,omitempty"`
	Title     string         `yaml:"title,omitempty"`
	Language  string         `yaml:"language,omitempty"`
	Converted int            `yaml:"converted"`
	Ambiguous int            `yaml:"ambiguous"`
	Units     map[string]int `yaml:"units,omitempty"`
	Error     string         `yaml:"error,omitempty"`
	ErrorType string         `yaml:"error_type,omitempty"`
}

// BatchSummary is written next to the converted documents after a URL
// batch.
type BatchSummary struct {
	TotalURLs        int            `yaml:"total_urls"`
	Success          int            `yaml:"success"`
	Failed           int            `yaml:"failed"`
	TotalConverted   int            `yaml:"total_converted"`
	TotalTimeSeconds float64        `yaml:"total_time_seconds"`
	Units            map[string]int `yaml:"units,omitempty"`
	Results          []Result       `yaml:"results"`
}

func ConvertAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if c.IsSet("urls") {
		config.URLs = strings.Split(c.String("urls"), ",")
	}
	if c.IsSet("workers") || config.WorkerCount == 0 {
		config.WorkerCount = c.Int("workers")
	}
	if c.IsSet("output-dir") || config.OutputDir == "" {
		config.OutputDir = c.String("output-dir")
	}

	if c.IsSet("file") || len(config.URLs) == 0 {
		return convertLocal(c, logger)
	}
	return convertURLs(c, logger, config)
}

// convertLocal converts a single document from a file or stdin and writes
// the result to stdout.
func convertLocal(c *cli.Context, logger *slog.Logger) error {
	source := "stdin"
	var input io.Reader = os.Stdin
	if c.IsSet("file") {
		source = c.String("file")
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	doc, err := dom.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return err
	}

	counters := pipeline.Process(doc)
	logger.Info("document processed",
		"source", source, "elements", counters.Elements, "converted", counters.Converted)

	html, err := doc.Html()
	if err != nil {
		return err
	}
	fmt.Println(html)

	recordRun(logger, source, string(raw), counters)
	return nil
}

func convertURLs(c *cli.Context, logger *slog.Logger, config *models.ConvertConfig) error {
	startTime := time.Now()

	originalURLs := config.URLs
	sanitizedURLs, invalidURLs := common.SanitizeAndValidateURLs(originalURLs)
	if len(invalidURLs) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalidURLs))
		for _, badURL := range invalidURLs {
			fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
		}
		os.Exit(1)
	}
	config.URLs = sanitizedURLs

	var maxAge time.Duration
	if !c.Bool("force-fetch") {
		var err error
		maxAge, err = time.ParseDuration(c.String("max-age"))
		if err != nil {
			logger.Error("invalid max-age duration", "error", err)
			os.Exit(2)
		}
	}

	store, err := storage.New(config.OutputDir)
	if err != nil {
		logger.Error("failed to initialize output directory", "error", err)
		os.Exit(2)
	}
	cache, err := caching.NewCache(filepath.Join(store.Dir(), ".cache"), maxAge)
	if err != nil {
		logger.Error("failed to initialize cache", "error", err)
		os.Exit(2)
	}

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 4
	}

	var wg sync.WaitGroup
	jobs := make(chan Job, len(config.URLs))
	results := make(chan Result, len(config.URLs))

	f := fetcher.NewFetcher()
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go worker(w, logger, f, cache, store, database, &wg, jobs, results)
	}

	for _, rawURL := range config.URLs {
		jobs <- Job{URL: rawURL}
	}
	close(jobs)

	wg.Wait()
	close(results)

	summary := BatchSummary{TotalURLs: len(config.URLs)}
	var unitMaps []map[string]int
	for result := range results {
		summary.Results = append(summary.Results, result)
		if result.Error != "" {
			summary.Failed++
			continue
		}
		summary.Success++
		summary.TotalConverted += result.Converted
		unitMaps = append(unitMaps, result.Units)
	}
	summary.Units = tally.Reduce(unitMaps)
	summary.TotalTimeSeconds = time.Since(startTime).Seconds()

	summaryBytes, err := yaml.Marshal(summary)
	if err != nil {
		logger.Warn("failed to marshal batch summary", "error", err)
	} else if path, err := store.Save("batch_summary.yaml", summaryBytes); err != nil {
		logger.Warn("failed to write batch summary", "error", err)
	} else {
		logger.Info("batch summary written", "path", path)
	}

	fmt.Printf("Converted %d/%d documents (%d measurements)\n",
		summary.Success, summary.TotalURLs, summary.TotalConverted)
	if len(summary.Units) > 0 {
		fmt.Println("Most converted units:")
		tally.PrintTopUnits(summary.Units, 10)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.TotalURLs)
	}
	return nil
}

// worker processes jobs from the jobs channel and sends results to the
// results channel.
func worker(id int, logger *slog.Logger, f *fetcher.Fetcher, cache *caching.Cache,
	store *storage.Storage, database *db.DB, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()

	for job := range jobs {
		logger.Info("worker started job", "worker", id, "url", job.URL)
		result := Result{URL: job.URL}

		raw, hit := cache.Get(job.URL)
		if !hit {
			var err error
			raw, err = f.GetHTMLBytes(job.URL)
			if err != nil {
				logger.Error("fetch failed", "worker", id, "url", job.URL, "error", err)
				result.Error = err.Error()
				result.ErrorType = "fetch_error"
				results <- result
				continue
			}
			if err := cache.Set(job.URL, raw); err != nil {
				logger.Warn("failed to cache page", "url", job.URL, "error", err)
			}
		}

		doc, err := dom.Parse(strings.NewReader(string(raw)))
		if err != nil {
			logger.Error("parse failed", "worker", id, "url", job.URL, "error", err)
			result.Error = err.Error()
			result.ErrorType = "parse_error"
			results <- result
			continue
		}

		counters := pipeline.Process(doc)

		html, err := doc.Html()
		if err != nil {
			result.Error = err.Error()
			result.ErrorType = "render_error"
			results <- result
			continue
		}

		path, err := store.Save(common.SavePathFor(job.URL), []byte(html))
		if err != nil {
			logger.Error("save failed", "worker", id, "url", job.URL, "error", err)
			result.Error = err.Error()
			result.ErrorType = "save_error"
			results <- result
			continue
		}

		pm := meta.Describe(job.URL, string(raw))
		run := &models.Run{
			Source:     job.URL,
			Title:      pm.Title,
			Language:   pm.Language,
			Elements:   counters.Elements,
			Matches:    counters.Matches,
			Converted:  counters.Converted,
			Ambiguous:  counters.Ambiguous,
			UnitCounts: counters.Units,
		}
		if _, err := database.InsertRun(run); err != nil {
			logger.Warn("failed to record run", "url", job.URL, "error", err)
		}

		result.FilePath = path
		result.Title = pm.Title
		result.Language = pm.Language
		result.Converted = counters.Converted
		result.Ambiguous = counters.Ambiguous
		result.Units = counters.Units
		results <- result
		logger.Info("worker finished job", "worker", id, "url", job.URL, "converted", counters.Converted)
	}
}

// recordRun stores a run for a local document; failures only warn because
// run history is best effort.
func recordRun(logger *slog.Logger, source, rawHTML string, counters pipeline.Counters) {
	database, err := db.Open()
	if err != nil {
		logger.Warn("failed to open database", "error", err)
		return
	}
	defer database.Close()

	pm := meta.Describe("", rawHTML)
	run := &models.Run{
		Source:     source,
		Title:      pm.Title,
		Language:   pm.Language,
		Elements:   counters.Elements,
		Matches:    counters.Matches,
		Converted:  counters.Converted,
		Ambiguous:  counters.Ambiguous,
		UnitCounts: counters.Units,
	}
	if _, err := database.InsertRun(run); err != nil {
		logger.Warn("failed to record run", "source", source, "error", err)
	}
}
