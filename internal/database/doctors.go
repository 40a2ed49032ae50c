package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"appointment/internal/config"
	"appointment/internal/models"
)

const doctorColumns = "id, name, specialty, working_hours, is_active, created_at, updated_at"

// UpsertDoctor inserts or updates a doctor by id.
func (db *DB) UpsertDoctor(ctx context.Context, d *models.Doctor) error {
	return upsertDoctor(ctx, db.DB, d)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertDoctor(ctx context.Context, ex execer, d *models.Doctor) error {
	_, err := ex.ExecContext(ctx, `
        INSERT INTO doctors (id, name, specialty, working_hours, is_active, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            specialty = excluded.specialty,
            working_hours = excluded.working_hours,
            is_active = excluded.is_active,
            updated_at = excluded.updated_at`,
		d.ID, d.Name, d.Specialty, d.WorkingHours, d.IsActive, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert doctor %d: %w", d.ID, err)
	}
	return nil
}

// GetDoctor returns a doctor by id, or sql.ErrNoRows.
func (db *DB) GetDoctor(ctx context.Context, id int64) (*models.Doctor, error) {
	row := db.QueryRowContext(ctx, "SELECT "+doctorColumns+" FROM doctors WHERE id = ?", id)
	return scanDoctor(row)
}

// ListActiveDoctors returns active doctors ordered by id.
func (db *DB) ListActiveDoctors(ctx context.Context) ([]models.Doctor, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+doctorColumns+" FROM doctors WHERE is_active = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []models.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, *d)
	}
	return doctors, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDoctor(s scanner) (*models.Doctor, error) {
	var (
		d         models.Doctor
		specialty sql.NullString
	)
	if err := s.Scan(&d.ID, &d.Name, &specialty, &d.WorkingHours, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Specialty = specialty.String
	return &d, nil
}

// WorkingHours implements validation.DoctorLookup. Non-numeric ids and inactive
// doctors are reported as not found.
func (db *DB) WorkingHours(ctx context.Context, doctorID string) (string, bool, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(doctorID), 10, 64)
	if err != nil {
		return "", false, nil
	}

	d, err := db.GetDoctor(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get doctor %d: %w", id, err)
	}
	if !d.IsActive {
		return "", false, nil
	}
	return d.WorkingHours, true, nil
}

// DeactivateMissing marks every doctor not in keep as inactive.
func (db *DB) DeactivateMissing(ctx context.Context, keep []int64) (int64, error) {
	return deactivateMissing(ctx, db.DB, keep)
}

func deactivateMissing(ctx context.Context, ex execer, keep []int64) (int64, error) {
	query := "UPDATE doctors SET is_active = 0, updated_at = ? WHERE is_active = 1"
	args := []any{time.Now()}
	if len(keep) > 0 {
		query += " AND id NOT IN (" + strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + ")"
		for _, id := range keep {
			args = append(args, id)
		}
	}

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deactivate doctors: %w", err)
	}
	return res.RowsAffected()
}

// SyncDoctorsFromConfig applies doctors.yaml in a single transaction.
// Doctors missing from the file are deactivated, never deleted.
func (db *DB) SyncDoctorsFromConfig(ctx context.Context, cfg *config.DoctorsConfig) error {
	if cfg == nil {
		return errors.New("doctors config is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(cfg.Doctors))
	for _, dc := range cfg.Doctors {
		d := &models.Doctor{
			ID:           dc.ID,
			Name:         dc.Name,
			Specialty:    dc.Specialty,
			WorkingHours: dc.WorkingHours,
			IsActive:     dc.Active(),
		}
		if err := upsertDoctor(ctx, tx, d); err != nil {
			return err
		}
		ids = append(ids, dc.ID)
	}

	if _, err := deactivateMissing(ctx, tx, ids); err != nil {
		return err
	}

	return tx.Commit()
}
