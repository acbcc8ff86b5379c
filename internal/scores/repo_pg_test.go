package scores

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGRepoAddEncodesCategories(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	at := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO score_history").
		WithArgs("e1", "u1", "r1", 72, []byte(`{"content":70}`), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	err = repo.Add(context.Background(), Entry{
		ID: "e1", OwnerID: "u1", ResumeID: "r1", OverallScore: 72,
		CategoryScores: map[string]int{"content": 70}, CreatedAt: at,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListByResume(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	at := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM score_history").
		WithArgs("u1", "r1", MaxHistory).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "resume_id", "overall_score", "category_scores", "created_at"}).
			AddRow("e1", "u1", "r1", 60, []byte(`{"content":55}`), at).
			AddRow("e2", "u1", "r1", 70, nil, at.Add(time.Hour)))

	repo := &PGRepo{DB: db}
	got, err := repo.ListByResume(context.Background(), "u1", "r1", MaxHistory)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]int{"content": 55}, got[0].CategoryScores)
	assert.Empty(t, got[1].CategoryScores)
	assert.Equal(t, 70, got[1].OverallScore)
	require.NoError(t, mock.ExpectationsWereMet())
}
