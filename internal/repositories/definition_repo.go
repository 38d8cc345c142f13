// repositories/definition_repo.go
package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/evn/timesheet_backend/internal/models"
)

type DefinitionRepository struct {
	db *sql.DB
}

func NewDefinitionRepository(db *sql.DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

func (r *DefinitionRepository) Get(name string) (models.ShiftDefinition, error) {
	var def models.ShiftDefinition
	var allowedTypes, expectedSlots []byte
	err := r.db.QueryRow(`
		SELECT name, daily_threshold_hours, weekly_threshold_hours, overtime_multiplier,
		       min_duration_hours, max_duration_hours, allowed_shift_types, expected_slots
		FROM shift_definitions WHERE name = $1
	`, name).Scan(&def.Name, &def.DailyThresholdHours, &def.WeeklyThresholdHours,
		&def.OvertimeMultiplier, &def.MinDurationHours, &def.MaxDurationHours,
		&allowedTypes, &expectedSlots)
	if err != nil {
		return def, err
	}

	if err := json.Unmarshal(allowedTypes, &def.AllowedShiftTypes); err != nil {
		return def, fmt.Errorf("decoding allowed_shift_types for %s: %w", name, err)
	}
	if err := json.Unmarshal(expectedSlots, &def.ExpectedSlots); err != nil {
		return def, fmt.Errorf("decoding expected_slots for %s: %w", name, err)
	}
	return def, nil
}

// GetOrDefault resolves a definition name from a request, falling back
// to the seeded "default" row, and to the built-in defaults if even that
// row is gone.
func (r *DefinitionRepository) GetOrDefault(name string) (models.ShiftDefinition, error) {
	if name == "" {
		name = "default"
	}
	def, err := r.Get(name)
	if err == sql.ErrNoRows && name == "default" {
		return models.DefaultShiftDefinition(), nil
	}
	return def, err
}

func (r *DefinitionRepository) List() ([]models.ShiftDefinition, error) {
	rows, err := r.db.Query(`SELECT name FROM shift_definitions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	defs := make([]models.ShiftDefinition, 0, len(names))
	for _, name := range names {
		def, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Save upserts a named rule set.
func (r *DefinitionRepository) Save(def models.ShiftDefinition) error {
	allowedTypes, err := json.Marshal(def.AllowedShiftTypes)
	if err != nil {
		return err
	}
	expectedSlots, err := json.Marshal(def.ExpectedSlots)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO shift_definitions
			(name, daily_threshold_hours, weekly_threshold_hours, overtime_multiplier,
			 min_duration_hours, max_duration_hours, allowed_shift_types, expected_slots)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			daily_threshold_hours = EXCLUDED.daily_threshold_hours,
			weekly_threshold_hours = EXCLUDED.weekly_threshold_hours,
			overtime_multiplier = EXCLUDED.overtime_multiplier,
			min_duration_hours = EXCLUDED.min_duration_hours,
			max_duration_hours = EXCLUDED.max_duration_hours,
			allowed_shift_types = EXCLUDED.allowed_shift_types,
			expected_slots = EXCLUDED.expected_slots
	`, def.Name, def.DailyThresholdHours, def.WeeklyThresholdHours, def.OvertimeMultiplier,
		def.MinDurationHours, def.MaxDurationHours, allowedTypes, expectedSlots)
	return err
}

func (r *DefinitionRepository) Delete(name string) error {
	if name == "default" {
		return fmt.Errorf("the default definition cannot be deleted")
	}
	res, err := r.db.Exec(`DELETE FROM shift_definitions WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
