// Package db implements the run-history CLI commands.
package db

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	dbpkg "github.com/BunLabs/MeasurementConverter/pkg/db"
	"github.com/BunLabs/MeasurementConverter/pkg/tally"
)

// RunsAction lists recorded conversion runs, newest first.
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	if strings.EqualFold(c.String("format"), "yaml") {
		yamlBytes, err := yaml.Marshal(runs)
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		fmt.Print(string(yamlBytes))
		return nil
	}

	fmt.Printf("%-6s %-20s %-10s %-10s %-10s %-40s\n",
		"ID", "Created", "Elements", "Matches", "Converted", "Source")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-10d %-10d %-10d %-40s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Elements,
			r.Matches,
			r.Converted,
			r.Source,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'measurement-converter run <id>' to see details\n")

	return nil
}

// RunAction shows details for a specific run, defaulting to the latest.
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if strings.EqualFold(c.String("format"), "yaml") {
		yamlBytes, err := yaml.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}
		fmt.Print(string(yamlBytes))
		return nil
	}

	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:    %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Source:     %s\n", run.Source)
	if run.Title != "" {
		fmt.Printf("Title:      %s\n", run.Title)
	}
	if run.Language != "" {
		fmt.Printf("Language:   %s\n", run.Language)
	}
	fmt.Printf("Elements:   %d scanned\n", run.Elements)
	fmt.Printf("Matches:    %d (%d converted, %d ambiguous)\n",
		run.Matches, run.Converted, run.Ambiguous)

	if len(run.UnitCounts) > 0 {
		fmt.Printf("\nUnits:\n")
		fmt.Println(strings.Repeat("-", 60))
		tally.PrintTopUnits(run.UnitCounts, len(run.UnitCounts))
	}

	return nil
}
