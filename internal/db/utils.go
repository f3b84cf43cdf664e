package db

import (
	"fmt"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/BunLabs/MeasurementConverter/pkg/db"
)

// GetRunIDOrLatest returns the run ID from args, or the latest run if not
// provided.
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		id, err := database.LatestRunID()
		if err != nil {
			return 0, fmt.Errorf("no runs found. Run 'measurement-converter convert' first: %w", err)
		}
		return id, nil
	}

	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
