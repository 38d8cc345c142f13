// importer/pos.go
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// POS exports are per-employee weekly summaries, not shift records: the
// first line is a report title, the second the header, and the data
// section ends at the sentinel "Role" in the second column. Only the
// Name and Work Hours columns matter; the rest is register noise.

// POSRow is one employee line of a POS summary export.
type POSRow struct {
	Name  string
	Hours float64
}

var nonNumericRe = regexp.MustCompile(`[^\d.]`)
var nonAlnumRe = regexp.MustCompile(`[^0-9a-z]`)

// NormalizeName lowercases, replaces non-alphanumerics with spaces and
// collapses whitespace, so "S-COMMON  Server" and "s common server"
// compare equal when matching template rows.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(nonAlnumRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")), " ")
}

// ParsePOSCSV reads a POS summary export. Rows with a missing name or an
// unparseable hours value are dropped and reported in the second return
// value.
func ParsePOSCSV(r io.Reader) ([]POSRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading pos csv: %w", err)
	}
	if len(lines) < 2 {
		return nil, nil, fmt.Errorf("pos csv has no header row")
	}

	// Header sits on the second line.
	header := lines[1]
	nameCol, hoursCol := -1, -1
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "name":
			nameCol = i
		case "work hours":
			hoursCol = i
		}
	}
	if nameCol == -1 || hoursCol == -1 {
		return nil, nil, fmt.Errorf("pos csv header must contain Name and Work Hours columns")
	}

	var rows []POSRow
	var skipped []string
	for i, line := range lines[2:] {
		// The employee section ends where the role breakdown begins.
		if cellAt(line, 1) == "Role" {
			break
		}
		name := cellAt(line, nameCol)
		rawHours := cellAt(line, hoursCol)
		if name == "" && rawHours == "" {
			continue
		}
		if name == "" {
			skipped = append(skipped, fmt.Sprintf("row %d: missing name", i+3))
			continue
		}

		cleaned := nonNumericRe.ReplaceAllString(rawHours, "")
		hours, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: cannot parse work hours %q", i+3, rawHours))
			continue
		}
		rows = append(rows, POSRow{Name: name, Hours: hours})
	}
	return rows, skipped, nil
}
