package service

import (
	"context"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

type ownershipRepository interface {
	StudentOwnedBy(ctx context.Context, teacherID, studentID string) (bool, error)
	PieceOwnedBy(ctx context.Context, teacherID, pieceID string) (bool, error)
	LessonOwnedBy(ctx context.Context, teacherID, lessonID string) (bool, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OwnershipGuard answers whether a teacher owns a resource. Call it inside the
// same transaction as the write it protects; lookups take row locks.
// Missing and foreign resources produce the same NotFound error.
type OwnershipGuard struct {
	repo ownershipRepository
}

// NewOwnershipGuard constructs the guard.
func NewOwnershipGuard(repo ownershipRepository) *OwnershipGuard {
	return &OwnershipGuard{repo: repo}
}

// Student fails with NotFound unless teacherID owns studentID.
func (g *OwnershipGuard) Student(ctx context.Context, teacherID, studentID string) error {
	return g.check(ctx, g.repo.StudentOwnedBy, teacherID, studentID, "student not found")
}

// Piece fails with NotFound unless teacherID owns pieceID.
func (g *OwnershipGuard) Piece(ctx context.Context, teacherID, pieceID string) error {
	return g.check(ctx, g.repo.PieceOwnedBy, teacherID, pieceID, "piece not found")
}

// Lesson fails with NotFound unless teacherID owns lessonID. The lesson row
// stays locked for update until the transaction ends.
func (g *OwnershipGuard) Lesson(ctx context.Context, teacherID, lessonID string) error {
	return g.check(ctx, g.repo.LessonOwnedBy, teacherID, lessonID, "lesson not found")
}

func (g *OwnershipGuard) check(ctx context.Context, owned func(context.Context, string, string) (bool, error), teacherID, id, notFound string) error {
	if teacherID == "" || !isResourceID(id) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	ok, err := owned(ctx, teacherID, id)
	if err != nil {
		return appErrors.Internal(err, "failed to verify ownership")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return nil
}

// isResourceID reports whether id can name a stored row. Every primary key is a UUID.
func isResourceID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
