package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	expiredAt := time.Now().Add(-time.Hour).Unix()
	freshAt := time.Now().Add(time.Hour).Unix()
	for _, table := range Tables {
		insertRaw(t, db, table, "EXPIRED", `{"status":"expired"}`, expiredAt)
		insertRaw(t, db, table, "FRESH", `{"status":"fresh"}`, freshAt)
	}

	require.NoError(t, job.Run())

	var count int
	require.NoError(t, db.QueryRow(
		"SELECT (SELECT COUNT(*) FROM alphavantage_economic) + (SELECT COUNT(*) FROM alphavantage_daily)",
	).Scan(&count))
	assert.Equal(t, len(Tables), count)
}

func TestCleanupJobRunEmptyTables(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	require.NoError(t, job.Run())
}

func TestCleanupJobRunFailsWithoutTables(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Exec("DROP TABLE alphavantage_daily")
	require.NoError(t, err)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Error(t, job.Run())
}
