package snowflake

import (
	"context"
	"fmt"
	"path/filepath"

	"snowlift/internal/normalize"
	"snowlift/internal/staging"
)

// backupSuffix marks the single-generation table backup.
const backupSuffix = "_OLD"

// LoadStats records the outcome of loading one staged file.
type LoadStats struct {
	File     string
	Country  string
	Table    string
	RowsRead int
	Loaded   int
	Success  bool
	Warning  string
	Err      error
}

// Loader drives the backup-and-replace load of normalized CSV files. The
// connect function yields a fresh connected Service per file so a failed
// load can never poison the next one.
type Loader struct {
	connect func() (*Service, error)
}

// NewLoader builds a loader that opens one connection per file load.
func NewLoader(config Config) *Loader {
	return &Loader{
		connect: func() (*Service, error) {
			svc := NewService(config)
			if err := svc.Connect(); err != nil {
				return nil, err
			}
			return svc, nil
		},
	}
}

// NewLoaderWithService builds a loader around a fixed service. Used by
// tests.
func NewLoaderWithService(svc *Service) *Loader {
	return &Loader{connect: func() (*Service, error) { return svc, nil }}
}

// LoadFile loads one normalized CSV into its destination table, replacing
// any previous generation:
//
//  1. if the table exists, drop the stale _OLD backup and rename the live
//     table to _OLD,
//  2. create the table fresh from the inferred CSV schema,
//  3. PUT the file to the user stage and COPY it in, aborting on the
//     first bad record.
//
// A backup rename that fails is reported as a warning on the stats but
// does not abort the load.
func (l *Loader) LoadFile(ctx context.Context, csvPath, country string) LoadStats {
	fileName := filepath.Base(csvPath)
	stats := LoadStats{
		File:    fileName,
		Country: country,
		Table:   normalize.TableName(fileName),
	}

	headers, rows, err := staging.ReadCSV(csvPath)
	if err != nil {
		stats.Err = err
		return stats
	}
	stats.RowsRead = len(rows)

	if len(rows) == 0 {
		stats.Warning = "empty file, skipped"
		stats.Success = true
		return stats
	}

	svc, err := l.connect()
	if err != nil {
		stats.Err = err
		return stats
	}
	defer svc.Close()

	if err := l.replaceTable(ctx, svc, &stats, headers, rows); err != nil {
		stats.Err = err
		return stats
	}

	if err := l.copyIn(ctx, svc, stats.Table, csvPath); err != nil {
		stats.Err = err
		return stats
	}

	stats.Loaded = len(rows)
	stats.Success = true
	return stats
}

func (l *Loader) replaceTable(ctx context.Context, svc *Service, stats *LoadStats, headers []string, rows [][]string) error {
	exists, err := svc.TableExists(ctx, stats.Table)
	if err != nil {
		return err
	}

	if exists {
		backup := stats.Table + backupSuffix
		if err := svc.DropTableIfExists(ctx, backup); err != nil {
			return err
		}
		if err := svc.RenameTable(ctx, stats.Table, backup); err != nil {
			// The load continues; CREATE will fail loudly if the live
			// table is actually still in the way.
			stats.Warning = fmt.Sprintf("backup rename failed: %v", err)
		}
	}

	return svc.CreateTable(ctx, stats.Table, InferColumns(headers, rows))
}

func (l *Loader) copyIn(ctx context.Context, svc *Service, table, csvPath string) error {
	if err := svc.StageFile(ctx, csvPath); err != nil {
		return err
	}

	stagedFile := filepath.Base(csvPath) + ".gz"
	if err := svc.CopyInto(ctx, table, stagedFile); err != nil {
		return err
	}

	// Stage cleanup is best effort; the data is already in.
	_ = svc.RemoveStaged(ctx, stagedFile)
	return nil
}
