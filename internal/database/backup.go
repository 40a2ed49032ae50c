package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"appointment/internal/config"

	"github.com/rs/zerolog"
)

const backupPrefix = "appointment_"

// Backup writes a consistent copy of the database to dest.
func (db *DB) Backup(ctx context.Context, dest string) error {
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("backup to %s: %w", dest, err)
	}
	return nil
}

type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start runs a backup right away and then on every interval until ctx is done.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	s.logger.Info().Dur("interval", s.config.Interval()).Msg("Backup service started")

	ticker := time.NewTicker(s.config.Interval())
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *BackupService) runOnce(ctx context.Context) {
	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled backup failed")
	}
	if deleted, err := s.CleanupOldBackups(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clean up old backups")
	} else if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Msg("Cleaned up old backups")
	}
}

// PerformBackup writes a timestamped backup file and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s%s.db", backupPrefix, s.now().Format("20060102_150405"))
	dest := filepath.Join(s.config.Path, name)

	s.logger.Info().Str("source", s.db.Path()).Str("path", dest).Msg("Performing database backup")
	if err := s.db.Backup(ctx, dest); err != nil {
		return "", err
	}

	s.logger.Info().Msg("Backup completed successfully")
	return dest, nil
}

// CleanupOldBackups removes backup files older than the retention period.
func (s *BackupService) CleanupOldBackups() (int, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}

	files, err := os.ReadDir(s.config.Path)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	deleted := 0

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), backupPrefix) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.config.Path, file.Name())); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}
