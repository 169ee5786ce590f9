package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gocausal/adapters/postgres"
	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/internal"
	"gocausal/internal/migration"
)

var logger = internal.DefaultLogger

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		logger.Error("Usage: migrate <database_url> [runs_dir]")
		os.Exit(2)
	}

	databaseURL := os.Args[1]
	ctx := context.Background()

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		logger.Error("Migration failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Schema at version %s", runner.Version())

	if len(os.Args) < 3 {
		return
	}

	runsDir := os.Args[2]
	files, err := findRunFiles(runsDir)
	if err != nil {
		logger.Error("Failed to find run files: %v", err)
		os.Exit(1)
	}
	logger.Info("Found %d run files to import from %s", len(files), runsDir)

	repo := postgres.NewRunRepository(db)
	imported, skipped := 0, 0
	for _, file := range files {
		runs, err := loadRunsFromFile(file)
		if err != nil {
			logger.Warn("Failed to load runs from %s: %v", file, err)
			skipped++
			continue
		}
		for _, run := range runs {
			if err := repo.Save(ctx, run); err != nil {
				logger.Warn("Failed to save run %s: %v", run.ID, err)
				skipped++
				continue
			}
			imported++
		}
	}

	logger.Info("Import complete: %d imported, %d skipped", imported, skipped)
}

func findRunFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// loadRunsFromFile reads "causal-cli discover --format json" output. Runs
// without an id get one derived from the file path and position, so
// re-importing a file upserts instead of duplicating.
func loadRunsFromFile(path string) ([]*causal.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var runs []*causal.Run
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &runs)
	} else {
		var run causal.Run
		err = json.Unmarshal(data, &run)
		runs = []*causal.Run{&run}
	}
	if err != nil {
		return nil, err
	}

	for i, run := range runs {
		if run.Graph == nil {
			return nil, fmt.Errorf("run %d has no graph", i)
		}
		if run.ID == "" {
			run.ID = core.RunID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", path, i))).String())
		}
	}
	return runs, nil
}
