package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seletivo-api/internal/models"
)

func poolRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "campus_id", "edital_id", "shift", "capacity", "dynamic_split",
		"quota_classified_m", "quota_classified_f", "quota_qualified_m", "quota_qualified_f", "quota_reserved",
		"occupied_classified_m", "occupied_classified_f", "occupied_qualified_m", "occupied_qualified_f", "occupied_reserved",
		"created_at", "updated_at",
	})
}

func TestVacancyPoolRepositoryFindByShiftScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacancyPoolRepository(db)

	now := time.Now()
	rows := poolRows().
		AddRow("pool-1", "campus-1", "edital-1", "MORNING", 10, false, 4, 2, 2, 1, 1, 0, 0, 0, 0, 0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM vacancy_pools WHERE campus_id = $1 AND edital_id = $2 AND shift = $3")).
		WithArgs("campus-1", "edital-1", "MORNING").
		WillReturnRows(rows)

	pool, err := repo.FindByShiftScope(context.Background(), "campus-1", "edital-1", "MORNING")
	require.NoError(t, err)
	require.Equal(t, "pool-1", pool.ID)
	require.Equal(t, 10, pool.TotalCapacity())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyPoolRepositoryFindByEditalScopeRequiresNullShift(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacancyPoolRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM vacancy_pools WHERE campus_id = $1 AND edital_id = $2 AND shift IS NULL")).
		WithArgs("campus-1", "edital-1").
		WillReturnRows(poolRows())

	_, err := repo.FindByEditalScope(context.Background(), "campus-1", "edital-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyPoolRepositoryFindLegacyByCampus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacancyPoolRepository(db)

	now := time.Now()
	rows := poolRows().
		AddRow("pool-legacy", "campus-1", nil, nil, 0, false, 5, 2, 0, 0, 0, 1, 0, 0, 0, 0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM vacancy_pools WHERE campus_id = $1 AND edital_id IS NULL AND shift IS NULL")).
		WithArgs("campus-1").
		WillReturnRows(rows)

	pool, err := repo.FindLegacyByCampus(context.Background(), "campus-1")
	require.NoError(t, err)
	require.Nil(t, pool.EditalID)
	require.Nil(t, pool.Shift)
	require.Equal(t, 7, pool.TotalCapacity())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyPoolRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacancyPoolRepository(db)

	mock.ExpectExec("INSERT INTO vacancy_pools").
		WillReturnResult(sqlmock.NewResult(0, 1))

	pool := &models.VacancyPool{CampusID: "campus-1"}
	err := repo.Create(context.Background(), pool)
	require.NoError(t, err)
	require.NotEmpty(t, pool.ID)
	require.False(t, pool.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyPoolRepositoryUpdatePersistsCounters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacancyPoolRepository(db)

	mock.ExpectExec("UPDATE vacancy_pools SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 3, OccupiedClassifiedMale: 2}
	err := repo.Update(context.Background(), pool)
	require.NoError(t, err)
	require.False(t, pool.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
