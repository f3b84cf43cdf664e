// Package watch implements the watch CLI command: an initially converted
// document kept converted while HTML fragments stream in on stdin, the
// way a live page keeps mutating after load.
package watch

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/BunLabs/MeasurementConverter/models"
	"github.com/BunLabs/MeasurementConverter/pkg/db"
	"github.com/BunLabs/MeasurementConverter/pkg/dom"
	"github.com/BunLabs/MeasurementConverter/pkg/pipeline"
)

const emptyPage = "<html><head></head><body></body></html>"

func WatchAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	source := "watch:stdin"
	initial := emptyPage
	if c.IsSet("file") {
		source = c.String("file")
		raw, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read initial document: %w", err)
		}
		initial = string(raw)
	}

	doc, err := dom.Parse(strings.NewReader(initial))
	if err != nil {
		return err
	}

	sched := pipeline.Attach(doc, logger)
	defer sched.Detach()
	logger.Info("initial pass complete",
		"elements", sched.Totals.Elements, "converted", sched.Totals.Converted)

	target := c.String("selector")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		fragment := strings.TrimSpace(scanner.Text())
		if fragment == "" {
			continue
		}
		if err := doc.AppendHTML(target, fragment); err != nil {
			// A bad fragment never stops the stream.
			logger.Warn("failed to append fragment", "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	html, err := doc.Html()
	if err != nil {
		return err
	}
	fmt.Println(html)

	logger.Info("watch finished",
		"elements", sched.Totals.Elements,
		"matches", sched.Totals.Matches,
		"converted", sched.Totals.Converted)

	recordRun(logger, source, sched.Totals)
	return nil
}

func recordRun(logger *slog.Logger, source string, totals pipeline.Counters) {
	database, err := db.Open()
	if err != nil {
		logger.Warn("failed to open database", "error", err)
		return
	}
	defer database.Close()

	run := &models.Run{
		Source:     source,
		Elements:   totals.Elements,
		Matches:    totals.Matches,
		Converted:  totals.Converted,
		Ambiguous:  totals.Ambiguous,
		UnitCounts: totals.Units,
	}
	if _, err := database.InsertRun(run); err != nil {
		logger.Warn("failed to record run", "source", source, "error", err)
	}
}
