package clientdata

import (
	"github.com/rs/zerolog"
)

// CleanupJob purges expired responses so stale fallbacks do not pile up.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates the purge job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

func (j *CleanupJob) Run() error {
	purged, err := j.repo.DeleteAllExpired()
	if err != nil {
		return err
	}

	event := j.log.Info()
	var total int64
	for table, n := range purged {
		event = event.Int64(table, n)
		total += n
	}
	event.Int64("total", total).Msg("Purged expired client data")
	return nil
}

func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
