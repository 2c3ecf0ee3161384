// Package staging manages the CSV staging area: writing extraction output,
// normalizing headers, renaming files into their canonical load names and
// rotating previous runs into the backup folder.
package staging

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"snowlift/internal/extract"
	"snowlift/pkg/errors"
)

// utf8BOM marks staged files so spreadsheet tools read accents correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a result set as a UTF-8 BOM CSV file.
func WriteCSV(path string, rs *extract.ResultSet) error {
	f, err := os.Create(path) // #nosec G304 - staging paths are built internally
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "cannot create staging file").
			WithContext("path", path)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "cannot write staging file").
			WithContext("path", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(rs.Columns); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "cannot write CSV header").
			WithContext("path", path)
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i := range record {
			if i < len(row) {
				record[i] = formatValue(row[i])
			} else {
				record[i] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "cannot write CSV row").
				WithContext("path", path)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadCSV reads a staged CSV file, stripping the BOM and detecting the
// separator from the first line.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path) // #nosec G304 - staging paths are built internally
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeFileNotFound, "cannot open staging file").
			WithContext("path", path)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	skipBOM(br)

	firstLine, err := br.Peek(4096)
	if err != nil && len(firstLine) == 0 {
		return nil, nil, errors.Wrap(err, errors.ErrCodeFileOperation, "cannot read staging file").
			WithContext("path", path)
	}

	r := csv.NewReader(br)
	r.Comma = DetectDelimiter(string(firstLine))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeFileOperation, "malformed staging file").
			WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

func skipBOM(br *bufio.Reader) {
	head, err := br.Peek(3)
	if err == nil && len(head) == 3 && head[0] == utf8BOM[0] && head[1] == utf8BOM[1] && head[2] == utf8BOM[2] {
		br.Discard(3)
	}
}

// DetectDelimiter picks the separator by counting candidates in the first
// line: semicolons win, ties go to comma.
func DetectDelimiter(firstLine string) rune {
	if i := strings.IndexAny(firstLine, "\r\n"); i >= 0 {
		firstLine = firstLine[:i]
	}
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}
