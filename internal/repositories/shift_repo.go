// repositories/shift_repo.go
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/evn/timesheet_backend/internal/models"
)

type ShiftRepository struct {
	db *sql.DB
}

func NewShiftRepository(db *sql.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// CreateBatch registers an upload and returns its ID.
func (r *ShiftRepository) CreateBatch(source, filename string, uploadedBy int) (int, error) {
	var id int
	err := r.db.QueryRow(`
		INSERT INTO import_batches (source, filename, uploaded_by)
		VALUES ($1, $2, $3)
		RETURNING id
	`, source, filename, uploadedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating import batch: %w", err)
	}
	return id, nil
}

// SaveRecords stores a batch of parsed records in one transaction.
func (r *ShiftRepository) SaveRecords(batchID int, records []models.ShiftRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO shift_records (batch_id, employee_id, employee, start_time, end_time, shift_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(batchID, rec.EmployeeID, rec.Employee, rec.Start, rec.End, rec.ShiftType); err != nil {
			return fmt.Errorf("inserting record for %s: %w", rec.EmployeeID, err)
		}
	}
	return tx.Commit()
}

func (r *ShiftRepository) UpdateBatchCounts(batchID, recordCount, issueCount int) error {
	_, err := r.db.Exec(`
		UPDATE import_batches SET record_count = $2, issue_count = $3 WHERE id = $1
	`, batchID, recordCount, issueCount)
	return err
}

func (r *ShiftRepository) GetBatch(id int) (*models.ImportBatch, error) {
	var b models.ImportBatch
	err := r.db.QueryRow(`
		SELECT id, source, filename, uploaded_by, record_count, issue_count, created_at
		FROM import_batches WHERE id = $1
	`, id).Scan(&b.ID, &b.Source, &b.Filename, &b.UploadedBy, &b.RecordCount, &b.IssueCount, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ShiftRepository) ListBatches() ([]models.ImportBatch, error) {
	rows, err := r.db.Query(`
		SELECT id, source, filename, uploaded_by, record_count, issue_count, created_at
		FROM import_batches
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []models.ImportBatch
	for rows.Next() {
		var b models.ImportBatch
		if err := rows.Scan(&b.ID, &b.Source, &b.Filename, &b.UploadedBy, &b.RecordCount, &b.IssueCount, &b.CreatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *ShiftRepository) DeleteBatch(id int) error {
	res, err := r.db.Exec(`DELETE FROM import_batches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByBatch returns the records of one upload, ordered for the engine.
func (r *ShiftRepository) GetByBatch(batchID int) ([]models.ShiftRecord, error) {
	return r.queryRecords(`
		SELECT id, batch_id, employee_id, employee, start_time, end_time, shift_type
		FROM shift_records
		WHERE batch_id = $1
		ORDER BY employee_id, start_time
	`, batchID)
}

// GetByPeriod returns all records starting inside [from, to).
func (r *ShiftRepository) GetByPeriod(from, to time.Time) ([]models.ShiftRecord, error) {
	return r.queryRecords(`
		SELECT id, batch_id, employee_id, employee, start_time, end_time, shift_type
		FROM shift_records
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY employee_id, start_time
	`, from, to)
}

func (r *ShiftRepository) queryRecords(query string, args ...interface{}) ([]models.ShiftRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ShiftRecord
	for rows.Next() {
		var rec models.ShiftRecord
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.EmployeeID, &rec.Employee, &rec.Start, &rec.End, &rec.ShiftType); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
