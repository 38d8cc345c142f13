// handlers/reports/handlers.go
package reports

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evn/timesheet_backend/internal/engine"
	"github.com/evn/timesheet_backend/internal/exporter"
	"github.com/evn/timesheet_backend/internal/models"
	"github.com/evn/timesheet_backend/internal/pkg/response"
	"github.com/evn/timesheet_backend/internal/repositories"
	"github.com/evn/timesheet_backend/internal/services"
)

type ReportHandlers struct {
	shifts      *repositories.ShiftRepository
	definitions *repositories.DefinitionRepository
	cache       *services.ReportCache
}

func NewReportHandlers(db *sql.DB, cache *services.ReportCache) *ReportHandlers {
	return &ReportHandlers{
		shifts:      repositories.NewShiftRepository(db),
		definitions: repositories.NewDefinitionRepository(db),
		cache:       cache,
	}
}

// parsePeriod reads from/to query params as YYYY-MM-DD. The range is
// half-open: records starting on the "to" day are excluded.
func parsePeriod(r *http.Request) (time.Time, time.Time, error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("from and to query parameters are required")
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must be after from")
	}
	return from, to, nil
}

func (h *ReportHandlers) computePeriodReports(r *http.Request) (map[string]*models.SummaryReport, error) {
	from, to, err := parsePeriod(r)
	if err != nil {
		return nil, err
	}
	def, err := h.definitions.GetOrDefault(r.URL.Query().Get("definition"))
	if err != nil {
		return nil, fmt.Errorf("unknown shift definition")
	}

	records, err := h.shifts.GetByPeriod(from, to)
	if err != nil {
		log.Printf("Failed to load records for period: %v", err)
		return nil, fmt.Errorf("database error")
	}
	if len(records) == 0 {
		return map[string]*models.SummaryReport{}, nil
	}
	return engine.Aggregate(records, def)
}

// GetReportsHandler recomputes summary reports over a date range.
func (h *ReportHandlers) GetReportsHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := h.computePeriodReports(r)
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	response.RespondWithJSON(w, http.StatusOK, reports)
}

// GetBatchReportHandler serves the cached reports of one import batch,
// recomputing them from the stored records on a cache miss.
func (h *ReportHandlers) GetBatchReportHandler(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.Atoi(chi.URLParam(r, "batchID"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid batch ID")
		return
	}

	if reports, err := h.cache.Get(r.Context(), batchID); err == nil && reports != nil {
		response.RespondWithJSON(w, http.StatusOK, reports)
		return
	} else if err != nil {
		log.Printf("Report cache lookup failed for batch %d: %v", batchID, err)
	}

	if _, err := h.shifts.GetBatch(batchID); err == sql.ErrNoRows {
		response.RespondWithError(w, http.StatusNotFound, "Batch not found")
		return
	} else if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	records, err := h.shifts.GetByBatch(batchID)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	def, err := h.definitions.GetOrDefault(r.URL.Query().Get("definition"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Unknown shift definition")
		return
	}

	reports, err := engine.Aggregate(records, def)
	if err != nil {
		// Records in the DB passed validation on import; reaching this
		// means the batch was tampered with outside the API.
		log.Printf("Aggregation failed for stored batch %d: %v", batchID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Aggregation failed")
		return
	}
	if err := h.cache.Save(r.Context(), batchID, reports); err != nil {
		log.Printf("Failed to cache reports for batch %d: %v", batchID, err)
	}
	response.RespondWithJSON(w, http.StatusOK, reports)
}

// ExportReportsHandler streams the period summary as an .xlsx download.
func (h *ReportHandlers) ExportReportsHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := h.computePeriodReports(r)
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := exporter.BuildSummaryWorkbook(reports)
	if err != nil {
		log.Printf("Failed to build summary workbook: %v", err)
		response.RespondWithError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	filename := fmt.Sprintf("timesheet_summary_%s_%s.xlsx",
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		log.Printf("Failed to stream workbook: %v", err)
	}
}
