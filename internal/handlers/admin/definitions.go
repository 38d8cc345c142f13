// handlers/admin/definitions.go
package admin

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evn/timesheet_backend/internal/models"
	"github.com/evn/timesheet_backend/internal/pkg/response"
	"github.com/evn/timesheet_backend/internal/repositories"
)

// Any fixed day works for checking that a slot's HH:MM strings parse.
var timeZeroDay = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ListDefinitionsHandler возвращает все наборы правил.
func ListDefinitionsHandler(db *sql.DB) http.HandlerFunc {
	repo := repositories.NewDefinitionRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		defs, err := repo.List()
		if err != nil {
			log.Printf("Failed to list definitions: %v", err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if defs == nil {
			defs = []models.ShiftDefinition{}
		}
		response.RespondWithJSON(w, http.StatusOK, defs)
	}
}

// SaveDefinitionHandler создаёт или обновляет набор правил.
func SaveDefinitionHandler(db *sql.DB) http.HandlerFunc {
	repo := repositories.NewDefinitionRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		var def models.ShiftDefinition
		if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if def.Name == "" {
			response.RespondWithError(w, http.StatusBadRequest, "Definition name is required")
			return
		}
		if def.DailyThresholdHours < 0 || def.WeeklyThresholdHours < 0 ||
			def.MinDurationHours < 0 || def.MaxDurationHours < 0 || def.OvertimeMultiplier < 0 {
			response.RespondWithError(w, http.StatusBadRequest, "Thresholds must not be negative")
			return
		}
		if def.MaxDurationHours > 0 && def.MinDurationHours > def.MaxDurationHours {
			response.RespondWithError(w, http.StatusBadRequest, "min_duration_hours exceeds max_duration_hours")
			return
		}
		// Reject malformed slot windows up front instead of flooding
		// every later validation run with config issues.
		for _, slot := range def.ExpectedSlots {
			if _, _, err := slot.Window(timeZeroDay); err != nil {
				response.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		if err := repo.Save(def); err != nil {
			log.Printf("Failed to save definition %s: %v", def.Name, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		response.RespondWithJSON(w, http.StatusOK, def)
	}
}

// DeleteDefinitionHandler удаляет набор правил (кроме default).
func DeleteDefinitionHandler(db *sql.DB) http.HandlerFunc {
	repo := repositories.NewDefinitionRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		err := repo.Delete(name)
		if err == sql.ErrNoRows {
			response.RespondWithError(w, http.StatusNotFound, "Definition not found")
			return
		}
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
