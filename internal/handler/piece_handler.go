package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	"github.com/noah-isme/studio-lessons-api/pkg/response"
)

type pieceService interface {
	List(ctx context.Context, teacherID string, q dto.PieceQuery) ([]models.Piece, error)
	Get(ctx context.Context, teacherID, id string) (*models.Piece, error)
	Create(ctx context.Context, teacherID string, req dto.CreatePieceRequest) (*models.Piece, error)
	Update(ctx context.Context, teacherID, id string, req dto.UpdatePieceRequest) (*models.Piece, error)
	Delete(ctx context.Context, teacherID, id string) error
}

// PieceHandler exposes the repertoire endpoints.
type PieceHandler struct {
	pieces pieceService
}

// NewPieceHandler constructs PieceHandler.
func NewPieceHandler(pieces pieceService) *PieceHandler {
	return &PieceHandler{pieces: pieces}
}

// List godoc
// @Summary List pieces
// @Tags Pieces
// @Produce json
// @Param search query string false "Search by title"
// @Param difficulty query int false "Difficulty 1-5"
// @Success 200 {object} response.Envelope
// @Router /pieces [get]
func (h *PieceHandler) List(c *gin.Context) {
	var q dto.PieceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	pieces, err := h.pieces.List(c.Request.Context(), teacherFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pieces)
}

// Get godoc
// @Summary Get piece
// @Tags Pieces
// @Produce json
// @Param id path string true "Piece ID"
// @Success 200 {object} response.Envelope
// @Router /pieces/{id} [get]
func (h *PieceHandler) Get(c *gin.Context) {
	piece, err := h.pieces.Get(c.Request.Context(), teacherFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, piece)
}

// Create godoc
// @Summary Create piece
// @Tags Pieces
// @Accept json
// @Produce json
// @Param payload body dto.CreatePieceRequest true "Piece payload"
// @Success 201 {object} response.Envelope
// @Router /pieces [post]
func (h *PieceHandler) Create(c *gin.Context) {
	var req dto.CreatePieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	piece, err := h.pieces.Create(c.Request.Context(), teacherFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, piece)
}

// Update godoc
// @Summary Update piece
// @Tags Pieces
// @Accept json
// @Produce json
// @Param id path string true "Piece ID"
// @Param payload body dto.UpdatePieceRequest true "Piece payload"
// @Success 200 {object} response.Envelope
// @Router /pieces/{id} [put]
func (h *PieceHandler) Update(c *gin.Context) {
	var req dto.UpdatePieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	piece, err := h.pieces.Update(c.Request.Context(), teacherFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, piece)
}

// Delete godoc
// @Summary Delete piece
// @Description Lessons referencing the piece keep existing without it.
// @Tags Pieces
// @Param id path string true "Piece ID"
// @Success 204
// @Router /pieces/{id} [delete]
func (h *PieceHandler) Delete(c *gin.Context) {
	if err := h.pieces.Delete(c.Request.Context(), teacherFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
