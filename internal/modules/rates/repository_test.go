package rates

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/aristath/yieldboard/internal/testing"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := testutil.NewTestDB(t, "history")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestRepository_UpsertAndGetAll(t *testing.T) {
	repo := newTestRepository(t)

	n, err := repo.Upsert("treasury_10year", []Observation{
		{Date: day("2024-02-01"), Rate: 0.0421},
		{Date: day("2023-12-01"), Rate: 0.0402},
		{Date: day("2024-01-01"), Rate: 0.0406},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := repo.GetAll("treasury_10year")
	require.NoError(t, err)
	assert.Equal(t, []Observation{
		{Date: day("2023-12-01"), Rate: 0.0402},
		{Date: day("2024-01-01"), Rate: 0.0406},
		{Date: day("2024-02-01"), Rate: 0.0421},
	}, all)
}

func TestRepository_UpsertReplacesRate(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Upsert("treasury_10year", []Observation{{Date: day("2024-01-01"), Rate: 0.04}})
	require.NoError(t, err)
	_, err = repo.Upsert("treasury_10year", []Observation{{Date: day("2024-01-01"), Rate: 0.045}})
	require.NoError(t, err)

	count, err := repo.Count("treasury_10year")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	latest, err := repo.Latest("treasury_10year")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 0.045, latest.Rate)
}

func TestRepository_SeriesAreIndependent(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Upsert("treasury_10year", []Observation{{Date: day("2024-01-01"), Rate: 0.04}})
	require.NoError(t, err)
	_, err = repo.Upsert("treasury_2year", []Observation{
		{Date: day("2024-01-01"), Rate: 0.043},
		{Date: day("2024-02-01"), Rate: 0.046},
	})
	require.NoError(t, err)

	count, err := repo.Count("treasury_10year")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	latest, err := repo.Latest("treasury_2year")
	require.NoError(t, err)
	assert.Equal(t, day("2024-02-01"), latest.Date)
}

func TestRepository_Empty(t *testing.T) {
	repo := newTestRepository(t)

	all, err := repo.GetAll("treasury_10year")
	require.NoError(t, err)
	assert.Empty(t, all)

	latest, err := repo.Latest("treasury_10year")
	require.NoError(t, err)
	assert.Nil(t, latest)

	n, err := repo.Upsert("treasury_10year", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
