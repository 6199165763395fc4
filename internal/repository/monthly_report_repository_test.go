package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

var reportRowColumns = []string{"id", "student_id", "month", "year", "summary", "comments", "next_month_plan", "created_at", "updated_at"}

func TestMonthlyReportRepositoryUpsertMergesWithCoalesce(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMonthlyReportRepository(db)
	now := time.Now()
	summary := "x"

	mock.ExpectQuery(regexp.QuoteMeta("SET summary = COALESCE(EXCLUDED.summary, monthly_reports.summary)")).
		WithArgs(sqlmock.AnyArg(), "student-1", 3, 2025, "x", nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(reportRowColumns).AddRow("report-1", "student-1", 3, 2025, "x", "keep me", nil, now, now))

	report, err := repo.Upsert(context.Background(), models.UpsertReportParams{StudentID: "student-1", Month: 3, Year: 2025, Summary: &summary})
	require.NoError(t, err)
	require.NotNil(t, report.Comments)
	assert.Equal(t, "keep me", *report.Comments)
	assert.Nil(t, report.NextMonthPlan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlyReportRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMonthlyReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM monthly_reports WHERE student_id = $1 AND month = $2 AND year = $3")).
		WithArgs("student-1", 2, 2025).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "student-1", 2, 2025)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
