// handlers/imports/handlers.go
package imports

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/evn/timesheet_backend/internal/engine"
	"github.com/evn/timesheet_backend/internal/importer"
	"github.com/evn/timesheet_backend/internal/middleware"
	"github.com/evn/timesheet_backend/internal/models"
	"github.com/evn/timesheet_backend/internal/pkg/response"
	"github.com/evn/timesheet_backend/internal/repositories"
	"github.com/evn/timesheet_backend/internal/services"
)

const maxUploadSize = 20 << 20

type ImportHandlers struct {
	shifts          *repositories.ShiftRepository
	definitions     *repositories.DefinitionRepository
	cache           *services.ReportCache
	hub             *services.ImportHub
	credentialsFile string
}

func NewImportHandlers(db *sql.DB, cache *services.ReportCache, hub *services.ImportHub, credentialsFile string) *ImportHandlers {
	return &ImportHandlers{
		shifts:          repositories.NewShiftRepository(db),
		definitions:     repositories.NewDefinitionRepository(db),
		cache:           cache,
		hub:             hub,
		credentialsFile: credentialsFile,
	}
}

// ImportCSVHandler ingests a shift-level CSV upload.
func (h *ImportHandlers) ImportCSVHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "File too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "File not found in request")
		return
	}
	defer file.Close()

	records, skipped, err := importer.ParseShiftCSV(file)
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.process(w, r, "csv", header.Filename, records, skipped)
}

// ImportExcelHandler ingests a shift-level .xlsx upload.
func (h *ImportHandlers) ImportExcelHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "File too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "File not found in request")
		return
	}
	defer file.Close()

	records, skipped, err := importer.ParseShiftWorkbook(file)
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.process(w, r, "excel", header.Filename, records, skipped)
}

// ImportSheetHandler pulls shift-level rows from a Google Sheets URL.
func (h *ImportHandlers) ImportSheetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GoogleSheetURL string `json:"google_sheet_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.GoogleSheetURL == "" {
		response.RespondWithError(w, http.StatusBadRequest, "google_sheet_url is required")
		return
	}

	records, skipped, err := importer.ParseGoogleSheet(r.Context(), req.GoogleSheetURL, h.credentialsFile)
	if err != nil {
		log.Printf("Google Sheets import failed: %v", err)
		response.RespondWithError(w, http.StatusBadGateway, "Failed to read Google Sheet: "+err.Error())
		return
	}
	h.process(w, r, "sheet", req.GoogleSheetURL, records, skipped)
}

// process runs the shared pipeline: persist the batch, validate,
// aggregate, cache the reports and push progress over the websocket hub.
func (h *ImportHandlers) process(w http.ResponseWriter, r *http.Request, source, filename string, records []models.ShiftRecord, skipped []string) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	if len(records) == 0 {
		response.RespondWithError(w, http.StatusBadRequest, "No parseable shift records in input")
		return
	}

	def, err := h.definitions.GetOrDefault(r.URL.Query().Get("definition"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Unknown shift definition")
		return
	}

	// The engine rejects invariant violations outright; the caller
	// decides whether to fix the file and retry.
	issues, err := engine.Validate(records, def)
	if err != nil {
		var invalid *engine.InvalidRecordError
		if errors.As(err, &invalid) {
			response.RespondWithError(w, http.StatusUnprocessableEntity, invalid.Error())
			return
		}
		response.RespondWithError(w, http.StatusInternalServerError, "Validation failed")
		return
	}

	batchID, err := h.shifts.CreateBatch(source, filename, userID)
	if err != nil {
		log.Printf("Failed to create batch: %v", err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	h.hub.Publish(services.ImportEvent{Type: "batch_created", BatchID: batchID, Source: source})

	if err := h.shifts.SaveRecords(batchID, records); err != nil {
		log.Printf("Failed to save records for batch %d: %v", batchID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	h.hub.Publish(services.ImportEvent{
		Type: "parsed", BatchID: batchID, RecordCount: len(records), SkippedRows: len(skipped),
	})

	h.hub.Publish(services.ImportEvent{Type: "validated", BatchID: batchID, IssueCount: len(issues)})

	reports, err := engine.Aggregate(records, def)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Aggregation failed")
		return
	}
	h.hub.Publish(services.ImportEvent{Type: "aggregated", BatchID: batchID, RecordCount: len(records)})

	if err := h.cache.Save(r.Context(), batchID, reports); err != nil {
		// Cache trouble is not fatal; reports are recomputable from the DB.
		log.Printf("Failed to cache reports for batch %d: %v", batchID, err)
	}
	if err := h.shifts.UpdateBatchCounts(batchID, len(records), len(issues)); err != nil {
		log.Printf("Failed to update batch %d counts: %v", batchID, err)
	}

	if issues == nil {
		issues = []models.ValidationIssue{}
	}
	response.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"batch_id":     batchID,
		"record_count": len(records),
		"skipped_rows": skipped,
		"issues":       issues,
		"reports":      reports,
	})
}

func (h *ImportHandlers) ListBatchesHandler(w http.ResponseWriter, r *http.Request) {
	batches, err := h.shifts.ListBatches()
	if err != nil {
		log.Printf("Failed to list batches: %v", err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if batches == nil {
		batches = []models.ImportBatch{}
	}
	response.RespondWithJSON(w, http.StatusOK, batches)
}

func (h *ImportHandlers) DeleteBatchHandler(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.Atoi(chi.URLParam(r, "batchID"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid batch ID")
		return
	}

	if err := h.shifts.DeleteBatch(batchID); err == sql.ErrNoRows {
		response.RespondWithError(w, http.StatusNotFound, "Batch not found")
		return
	} else if err != nil {
		log.Printf("Failed to delete batch %d: %v", batchID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.cache.Invalidate(r.Context(), batchID); err != nil {
		log.Printf("Failed to invalidate report cache for batch %d: %v", batchID, err)
	}
	response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
