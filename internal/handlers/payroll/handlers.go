// handlers/payroll/handlers.go
package payroll

import (
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evn/timesheet_backend/internal/exporter"
	"github.com/evn/timesheet_backend/internal/importer"
	"github.com/evn/timesheet_backend/internal/pkg/response"
)

const maxUploadSize = 20 << 20

// FillTemplateHandler reproduces the desktop workflow over HTTP: a POS
// summary CSV plus a payroll template .xlsx and a week choice go in, the
// filled workbook comes back as a download.
func FillTemplateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "File too large or malformed")
			return
		}

		week := r.FormValue("week")
		if week == "" {
			response.RespondWithError(w, http.StatusBadRequest, "week form value is required")
			return
		}

		var threshold float64
		if raw := r.FormValue("weekly_threshold_hours"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed <= 0 {
				response.RespondWithError(w, http.StatusBadRequest, "Invalid weekly_threshold_hours")
				return
			}
			threshold = parsed
		}

		csvFile, _, err := r.FormFile("csv")
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "csv file is required")
			return
		}
		defer csvFile.Close()

		templateFile, templateHeader, err := r.FormFile("template")
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "template file is required")
			return
		}
		defer templateFile.Close()

		rows, skipped, err := importer.ParsePOSCSV(csvFile)
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(rows) == 0 {
			response.RespondWithError(w, http.StatusBadRequest, "No valid rows in POS csv")
			return
		}
		for _, msg := range skipped {
			log.Printf("POS csv: %s", msg)
		}

		f, err := exporter.FillTemplate(templateFile, rows, exporter.FillOptions{
			Week:                 week,
			WeeklyThresholdHours: threshold,
		})
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+outputFilename(templateHeader.Filename)+`"`)
		if err := f.Write(w); err != nil {
			log.Printf("Failed to stream filled template: %v", err)
		}
	}
}

// outputFilename derives the download name from the template name, e.g.
// "payroll.xlsx" -> "payroll_processed.xlsx".
func outputFilename(templateName string) string {
	base := filepath.Base(templateName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "template"
	}
	if ext == "" {
		ext = ".xlsx"
	}
	return stem + "_processed" + ext
}
