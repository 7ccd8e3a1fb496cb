package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seletivo-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func candidateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "full_name", "cpf", "birth_date", "campus_id", "edital_id", "shift", "gender",
		"registration_date", "registration_time", "status", "category", "elimination_reason", "created_at", "updated_at",
	})
}

func TestCandidateRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	now := time.Now()
	rows := candidateRows().
		AddRow("c1", "Maria Souza", "12345678901", nil, "campus-1", nil, "MORNING", models.GenderFemale,
			now, "08:30:00", models.StatusPending, nil, nil, now, now)
	mock.ExpectQuery("SELECT .+ FROM candidates WHERE id = \\$1").
		WithArgs("c1").
		WillReturnRows(rows)

	candidate, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "Maria Souza", candidate.FullName)
	require.Equal(t, models.GenderFemale, candidate.Gender)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryListByScopeOrdersByRegistration(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	now := time.Now()
	editalID := "edital-1"
	rows := candidateRows().
		AddRow("c1", "A", "1", nil, "campus-1", editalID, "MORNING", models.GenderMale, now, "08:00:00", models.StatusPending, nil, nil, now, now).
		AddRow("c2", "B", "2", nil, "campus-1", editalID, "MORNING", models.GenderFemale, now, "08:05:00", models.StatusPending, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY registration_date ASC, registration_time ASC, id ASC")).
		WithArgs("campus-1", editalID, "MORNING").
		WillReturnRows(rows)

	candidates, err := repo.ListByScope(context.Background(), "campus-1", &editalID, "MORNING")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "c1", candidates[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryUpdateAllocation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	category := models.CategoryClassifiedFemale
	candidate := &models.Candidate{ID: "c1", Status: models.StatusClassified, Category: &category}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE candidates SET status = $2, category = $3, elimination_reason = $4, updated_at = $5 WHERE id = $1")).
		WithArgs("c1", models.StatusClassified, &category, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAllocation(context.Background(), candidate)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryExistsByCPF(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	editalID := "edital-1"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM candidates WHERE cpf = $1 AND edital_id = $2")).
		WithArgs("12345678901", editalID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByCPF(context.Background(), "12345678901", &editalID)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec("INSERT INTO candidates").
		WillReturnResult(sqlmock.NewResult(0, 1))

	candidate := &models.Candidate{FullName: "Jose Silva", CPF: "98765432100", CampusID: "campus-1", RegistrationDate: time.Now()}
	err := repo.Create(context.Background(), candidate)
	require.NoError(t, err)
	require.NotEmpty(t, candidate.ID)
	require.Equal(t, models.StatusPending, candidate.Status)
	require.Equal(t, models.GenderUnknown, candidate.Gender)
	require.NoError(t, mock.ExpectationsWereMet())
}
