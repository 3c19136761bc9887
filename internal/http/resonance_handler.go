package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mirrorbrain/internal/domain"
	"mirrorbrain/internal/repository"
	"mirrorbrain/internal/service"
)

// ResonanceHandler mantiene dependencias para los endpoints de resonancia.
type ResonanceHandler struct {
	logger *zap.Logger
	brains repository.BrainRepository
}

// NewResonanceHandler crea una instancia de ResonanceHandler.
func NewResonanceHandler(logger *zap.Logger, brains repository.BrainRepository) *ResonanceHandler {
	return &ResonanceHandler{logger: logger, brains: brains}
}

func (h *ResonanceHandler) resolve(c *gin.Context, id string) (domain.Brain, bool) {
	brain, err := h.brains.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found: " + id})
			return domain.Brain{}, false
		}
		h.logger.Error("get brain failed", zap.Error(err), zap.String("brain_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch brain"})
		return domain.Brain{}, false
	}
	return brain, true
}

// CompareBrains maneja GET /api/brain/:id/compare/:id2.
func (h *ResonanceHandler) CompareBrains(c *gin.Context) {
	brain1, ok := h.resolve(c, c.Param("id"))
	if !ok {
		return
	}
	brain2, ok := h.resolve(c, c.Param("id2"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.CalculateResonance(brain1, brain2))
}

// CalculateResonance maneja POST /api/resonance.
func (h *ResonanceHandler) CalculateResonance(c *gin.Context) {
	var req struct {
		BrainID1 string `json:"brain_id_1" binding:"required"`
		BrainID2 string `json:"brain_id_2" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resonance request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	brain1, ok := h.resolve(c, req.BrainID1)
	if !ok {
		return
	}
	brain2, ok := h.resolve(c, req.BrainID2)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.CalculateResonance(brain1, brain2))
}
