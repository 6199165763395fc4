package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// pqInvalidTextRepresentation is raised when a malformed literal reaches a uuid column.
const pqInvalidTextRepresentation = "22P02"

// OwnershipRepository answers tenant ownership questions. Lookups lock the
// matched row so that, inside a transaction, the owner cannot change or
// disappear before the caller's write commits.
type OwnershipRepository struct {
	db *sqlx.DB
}

// NewOwnershipRepository constructs an OwnershipRepository.
func NewOwnershipRepository(db *sqlx.DB) *OwnershipRepository {
	return &OwnershipRepository{db: db}
}

// StudentOwnedBy reports whether the student belongs to the teacher, holding a share lock on it.
func (r *OwnershipRepository) StudentOwnedBy(ctx context.Context, teacherID, studentID string) (bool, error) {
	return r.owned(ctx, `SELECT 1 FROM students WHERE id = $1 AND teacher_id = $2 FOR SHARE`, studentID, teacherID, "student")
}

// PieceOwnedBy reports whether the piece belongs to the teacher, holding a share lock on it.
func (r *OwnershipRepository) PieceOwnedBy(ctx context.Context, teacherID, pieceID string) (bool, error) {
	return r.owned(ctx, `SELECT 1 FROM pieces WHERE id = $1 AND teacher_id = $2 FOR SHARE`, pieceID, teacherID, "piece")
}

// LessonOwnedBy reports whether the lesson belongs to the teacher and locks it for update.
func (r *OwnershipRepository) LessonOwnedBy(ctx context.Context, teacherID, lessonID string) (bool, error) {
	return r.owned(ctx, `SELECT 1 FROM lessons WHERE id = $1 AND teacher_id = $2 FOR UPDATE`, lessonID, teacherID, "lesson")
}

func (r *OwnershipRepository) owned(ctx context.Context, query, id, teacherID, kind string) (bool, error) {
	var one int
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &one, query, id, teacherID); err != nil {
		if errors.Is(noRowsOnMalformedID(err), sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check %s ownership: %w", kind, err)
	}
	return true, nil
}

// noRowsOnMalformedID maps a malformed id to sql.ErrNoRows since it cannot match any row.
func noRowsOnMalformedID(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation {
		return sql.ErrNoRows
	}
	return err
}
