package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"snowlift/internal/normalize"
	"snowlift/pkg/errors"
)

// backupDir is the per-country folder where previous runs are kept.
const backupDir = "back"

// timestampPattern matches the _YYYYMMDD_HHMMSS suffix on raw files.
var timestampPattern = regexp.MustCompile(`_\d{8}_\d{6}`)

// RawFileName builds the name for a freshly extracted CSV.
func RawFileName(name string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.csv", normalize.FileName(name), ts.Format("20060102_150405"))
}

// RotateToBackup moves every CSV sitting directly in a country folder into
// back/, suffixing each with _bak_<timestamp> so repeated rotations never
// overwrite each other. Returns the number of files moved.
func RotateToBackup(countryDir string, ts time.Time) (int, error) {
	backDir := filepath.Join(countryDir, backupDir)
	if err := os.MkdirAll(backDir, 0750); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot create backup folder").
			WithContext("dir", backDir)
	}

	entries, err := os.ReadDir(countryDir)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot list country folder").
			WithContext("dir", countryDir)
	}

	stamp := ts.Format("20060102_150405")
	moved := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		target := filepath.Join(backDir, fmt.Sprintf("%s_bak_%s.csv", stem, stamp))
		if err := os.Rename(filepath.Join(countryDir, entry.Name()), target); err != nil {
			return moved, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot move file to backup").
				WithContext("file", entry.Name())
		}
		moved++
	}
	return moved, nil
}

// Rename records one canonicalization performed by RenameNormalized.
type Rename struct {
	From string
	To   string
}

// RenameNormalized canonicalizes every normalized CSV in a country folder:
// timestamps are stripped and the name is rebuilt to end in
// _<COUNTRY>_normalized.csv with the country token deduplicated.
func RenameNormalized(countryDir, country string) ([]Rename, error) {
	entries, err := os.ReadDir(countryDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot list country folder").
			WithContext("dir", countryDir)
	}

	var changes []Rename
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), normalize.NormalizedSuffix) {
			continue
		}

		newName := CanonicalName(entry.Name(), country)
		if newName == entry.Name() {
			continue
		}

		if err := os.Rename(filepath.Join(countryDir, entry.Name()), filepath.Join(countryDir, newName)); err != nil {
			return changes, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot rename staging file").
				WithContext("file", entry.Name())
		}
		changes = append(changes, Rename{From: entry.Name(), To: newName})
	}
	return changes, nil
}

// CanonicalName computes the final load name for a normalized file.
func CanonicalName(fileName, country string) string {
	name := timestampPattern.ReplaceAllString(fileName, "")

	base := strings.TrimSuffix(name, normalize.NormalizedSuffix)
	base = strings.ReplaceAll(base, "_"+country, "")

	name = base + "_" + country + normalize.NormalizedSuffix
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

// ListNormalized returns the normalized CSVs in a country folder, sorted
// by name.
func ListNormalized(countryDir string) ([]string, error) {
	pattern := filepath.Join(countryDir, "*"+normalize.NormalizedSuffix)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot glob staging files").
			WithContext("dir", countryDir)
	}
	return files, nil
}

// ListRaw returns the CSVs in a country folder that have not been
// normalized yet.
func ListRaw(countryDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(countryDir, "*.csv"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot glob staging files").
			WithContext("dir", countryDir)
	}
	var raw []string
	for _, f := range files {
		if !strings.HasSuffix(f, normalize.NormalizedSuffix) {
			raw = append(raw, f)
		}
	}
	return raw, nil
}
