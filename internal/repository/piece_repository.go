package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

const pieceColumns = `id, teacher_id, title, difficulty, description, created_at, updated_at`

// PieceRepository manages the teacher's repertoire.
type PieceRepository struct {
	db *sqlx.DB
}

// NewPieceRepository constructs a PieceRepository.
func NewPieceRepository(db *sqlx.DB) *PieceRepository {
	return &PieceRepository{db: db}
}

func (r *PieceRepository) List(ctx context.Context, filter models.PieceFilter) ([]models.Piece, error) {
	args := []interface{}{filter.TeacherID}
	conditions := []string{"teacher_id = $1"}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Difficulty != nil {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", len(args)+1))
		args = append(args, *filter.Difficulty)
	}

	query := fmt.Sprintf("SELECT %s FROM pieces WHERE %s ORDER BY difficulty ASC, title ASC", pieceColumns, strings.Join(conditions, " AND "))
	var pieces []models.Piece
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &pieces, query, args...); err != nil {
		return nil, fmt.Errorf("list pieces: %w", err)
	}
	return pieces, nil
}

// FindByID returns sql.ErrNoRows when the piece is missing or owned by another teacher.
func (r *PieceRepository) FindByID(ctx context.Context, teacherID, id string) (*models.Piece, error) {
	query := `SELECT ` + pieceColumns + ` FROM pieces WHERE id = $1 AND teacher_id = $2`
	var piece models.Piece
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &piece, query, id, teacherID); err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	return &piece, nil
}

func (r *PieceRepository) Create(ctx context.Context, piece *models.Piece) error {
	if piece.ID == "" {
		piece.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	piece.CreatedAt = now
	piece.UpdatedAt = now
	const query = `INSERT INTO pieces (id, teacher_id, title, difficulty, description, created_at, updated_at)
        VALUES (:id, :teacher_id, :title, :difficulty, :description, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, piece); err != nil {
		return fmt.Errorf("create piece: %w", err)
	}
	return nil
}

func (r *PieceRepository) Update(ctx context.Context, piece *models.Piece) error {
	piece.UpdatedAt = time.Now().UTC()
	const query = `UPDATE pieces SET title = :title, difficulty = :difficulty, description = :description, updated_at = :updated_at
        WHERE id = :id AND teacher_id = :teacher_id`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, piece); err != nil {
		return fmt.Errorf("update piece: %w", err)
	}
	return nil
}

// Delete removes the piece; lessons referencing it keep existing with piece_id cleared.
func (r *PieceRepository) Delete(ctx context.Context, teacherID, id string) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM pieces WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return fmt.Errorf("delete piece: %w", err)
	}
	return expectAffected(res)
}
