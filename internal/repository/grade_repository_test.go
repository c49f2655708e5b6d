package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-proctor-api/internal/models"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

func TestGradeRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WithArgs("MA", "Assistant", 5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	g := &models.Grade{ID: "MA", Name: "Assistant", Ceiling: 5}
	require.NoError(t, repo.Upsert(context.Background(), g))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositorySetCeiling(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE grades SET ceiling = $1 WHERE id = $2")).
		WithArgs(7, "MA").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetCeiling(context.Background(), "MA", 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositorySetCeilingUnknownGrade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE grades SET ceiling = $1 WHERE id = $2")).
		WithArgs(7, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetCeiling(context.Background(), "ghost", 7)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
