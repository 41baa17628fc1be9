package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupJob uploads a fresh backup and prunes old ones
type BackupJob struct {
	service *BackupService
	retain  int
	timeout time.Duration
	log     zerolog.Logger
}

// NewBackupJob creates a new backup job keeping the newest retain archives
func NewBackupJob(service *BackupService, retain int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service: service,
		retain:  retain,
		timeout: 10 * time.Minute,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "r2_backup"
}

// Run executes the backup. Rotation failures do not fail the job.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if _, err := j.service.RotateOldBackups(ctx, j.retain); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}
