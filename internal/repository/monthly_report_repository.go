package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

const monthlyReportColumns = `id, student_id, month, year, summary, comments, next_month_plan, created_at, updated_at`

// MonthlyReportRepository stores the narrative part of monthly reports.
type MonthlyReportRepository struct {
	db *sqlx.DB
}

// NewMonthlyReportRepository constructs a MonthlyReportRepository.
func NewMonthlyReportRepository(db *sqlx.DB) *MonthlyReportRepository {
	return &MonthlyReportRepository{db: db}
}

// Find returns sql.ErrNoRows when no report was written for the month yet.
func (r *MonthlyReportRepository) Find(ctx context.Context, studentID string, month, year int) (*models.MonthlyReport, error) {
	query := `SELECT ` + monthlyReportColumns + ` FROM monthly_reports WHERE student_id = $1 AND month = $2 AND year = $3`
	var report models.MonthlyReport
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &report, query, studentID, month, year); err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	return &report, nil
}

// Upsert writes the report in one statement. Nil fields in params keep the
// stored value; a fresh row stores NULL for them.
func (r *MonthlyReportRepository) Upsert(ctx context.Context, params models.UpsertReportParams) (*models.MonthlyReport, error) {
	now := time.Now().UTC()
	query := `INSERT INTO monthly_reports (id, student_id, month, year, summary, comments, next_month_plan, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        ON CONFLICT (student_id, month, year) DO UPDATE
        SET summary = COALESCE(EXCLUDED.summary, monthly_reports.summary),
            comments = COALESCE(EXCLUDED.comments, monthly_reports.comments),
            next_month_plan = COALESCE(EXCLUDED.next_month_plan, monthly_reports.next_month_plan),
            updated_at = EXCLUDED.updated_at
        RETURNING ` + monthlyReportColumns
	var report models.MonthlyReport
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &report, query,
		uuid.NewString(), params.StudentID, params.Month, params.Year,
		params.Summary, params.Comments, params.NextMonthPlan, now); err != nil {
		return nil, fmt.Errorf("upsert monthly report: %w", err)
	}
	return &report, nil
}
