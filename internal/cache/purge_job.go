package cache

import (
	"github.com/rs/zerolog"
)

// PurgeJob drops expired responses so the store does not grow unbounded
type PurgeJob struct {
	store *Store
	log   zerolog.Logger
}

// NewPurgeJob creates a new purge job for store
func NewPurgeJob(store *Store, log zerolog.Logger) *PurgeJob {
	return &PurgeJob{
		store: store,
		log:   log.With().Str("job", "response_cache_purge").Logger(),
	}
}

// Run removes expired entries
func (j *PurgeJob) Run() error {
	removed := j.store.Purge()
	j.log.Debug().Int("removed", removed).Int("remaining", j.store.Len()).Msg("Response cache purged")
	return nil
}

// Name returns the job name
func (j *PurgeJob) Name() string {
	return "response_cache_purge"
}
