package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

type pieceRepository interface {
	List(ctx context.Context, filter models.PieceFilter) ([]models.Piece, error)
	FindByID(ctx context.Context, teacherID, id string) (*models.Piece, error)
	Create(ctx context.Context, piece *models.Piece) error
	Update(ctx context.Context, piece *models.Piece) error
	Delete(ctx context.Context, teacherID, id string) error
}

// PieceService manages the teacher's repertoire.
type PieceService struct {
	repo      pieceRepository
	guard     *OwnershipGuard
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPieceService constructs a PieceService.
func NewPieceService(repo pieceRepository, guard *OwnershipGuard, tx transactor, validate *validator.Validate, logger *zap.Logger) *PieceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PieceService{repo: repo, guard: guard, tx: tx, validator: validate, logger: logger}
}

func (s *PieceService) List(ctx context.Context, teacherID string, q dto.PieceQuery) ([]models.Piece, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid piece query")
	}
	if teacherID == "" {
		return []models.Piece{}, nil
	}
	filter := models.PieceFilter{TeacherID: teacherID, Search: strings.TrimSpace(q.Search)}
	if q.Difficulty > 0 {
		d := q.Difficulty
		filter.Difficulty = &d
	}
	pieces, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list pieces")
	}
	if pieces == nil {
		pieces = []models.Piece{}
	}
	return pieces, nil
}

// Get returns one of the teacher's pieces.
func (s *PieceService) Get(ctx context.Context, teacherID, id string) (*models.Piece, error) {
	if teacherID == "" || !isResourceID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "piece not found")
	}
	piece, err := s.repo.FindByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "piece not found")
		}
		return nil, appErrors.Internal(err, "failed to load piece")
	}
	return piece, nil
}

func (s *PieceService) Create(ctx context.Context, teacherID string, req dto.CreatePieceRequest) (*models.Piece, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid piece payload")
	}
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	piece := &models.Piece{
		TeacherID:   teacherID,
		Title:       strings.TrimSpace(req.Title),
		Difficulty:  req.Difficulty,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, piece); err != nil {
		return nil, appErrors.Internal(err, "failed to create piece")
	}
	return piece, nil
}

func (s *PieceService) Update(ctx context.Context, teacherID, id string, req dto.UpdatePieceRequest) (*models.Piece, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid piece payload")
	}
	var updated *models.Piece
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Piece(ctx, teacherID, id); err != nil {
			return err
		}
		piece, err := s.Get(ctx, teacherID, id)
		if err != nil {
			return err
		}
		if req.Title != nil {
			piece.Title = strings.TrimSpace(*req.Title)
		}
		if req.Difficulty != nil {
			piece.Difficulty = *req.Difficulty
		}
		if req.Description != nil {
			piece.Description = req.Description
		}
		if err := s.repo.Update(ctx, piece); err != nil {
			return appErrors.Internal(err, "failed to update piece")
		}
		updated = piece
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return updated, nil
}

// Delete removes the piece; lessons that used it stay with no piece.
func (s *PieceService) Delete(ctx context.Context, teacherID, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Piece(ctx, teacherID, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, teacherID, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "piece not found")
			}
			return appErrors.Internal(err, "failed to delete piece")
		}
		return nil
	})
	if err != nil {
		return appErrors.FromError(err)
	}
	return nil
}
