// importer/sheets.go
package importer

import (
	"context"
	"fmt"
	"regexp"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/evn/timesheet_backend/internal/models"
)

var spreadsheetIDRe = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ParseGoogleSheet pulls shift-level rows from a Google Sheets URL using
// a service-account credentials file.
func ParseGoogleSheet(ctx context.Context, url, credentialsFile string) ([]models.ShiftRecord, []string, error) {
	rows, err := readGoogleSheet(ctx, url, credentialsFile)
	if err != nil {
		return nil, nil, err
	}
	return RecordsFromRows(rows)
}

func readGoogleSheet(ctx context.Context, url, credentialsFile string) ([][]string, error) {
	matches := spreadsheetIDRe.FindStringSubmatch(url)
	if len(matches) < 2 {
		return nil, fmt.Errorf("invalid Google Sheets URL")
	}
	spreadsheetID := matches[1]

	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing Google API client: %w", err)
	}

	resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, "A1:F10000").Do()
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	var rows [][]string
	for _, row := range resp.Values {
		var strRow []string
		for _, cell := range row {
			strRow = append(strRow, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, strRow)
	}
	return rows, nil
}
