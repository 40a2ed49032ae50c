package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"appointment/internal/models"
)

// RecordValidation stores an audit entry and fills rec.ID.
func (db *DB) RecordValidation(ctx context.Context, rec *models.ValidationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	res, err := db.ExecContext(ctx, `
        INSERT INTO validation_audit (request_id, doctor_id, timeslot, normalized, outcome, message, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.DoctorID, rec.Timeslot, rec.Normalized, rec.Outcome, rec.Message, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert validation audit: %w", err)
	}

	rec.ID, err = res.LastInsertId()
	return err
}

// ListValidations returns the latest audit entries, newest first.
func (db *DB) ListValidations(ctx context.Context, limit int) ([]models.ValidationRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, request_id, doctor_id, timeslot, normalized, outcome, message, created_at
        FROM validation_audit
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list validation audit: %w", err)
	}
	defer rows.Close()

	var out []models.ValidationRecord
	for rows.Next() {
		var (
			rec       models.ValidationRecord
			requestID sql.NullString
			message   sql.NullString
		)
		if err := rows.Scan(&rec.ID, &requestID, &rec.DoctorID, &rec.Timeslot, &rec.Normalized, &rec.Outcome, &message, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.RequestID = requestID.String
		rec.Message = message.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
