package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mirrorbrain/internal/domain"
	"mirrorbrain/internal/repository"
	"mirrorbrain/internal/service"
)

const (
	maxListLimit        = 100
	maxLeaderboardLimit = 50
	maxResonantLimit    = 20
)

// BrainHandler mantiene dependencias para los endpoints CRUD de brains.
type BrainHandler struct {
	logger *zap.Logger
	brains repository.BrainRepository
	claims *service.ClaimTokenService
	cache  service.LeaderboardCache
}

// NewBrainHandler crea una instancia de BrainHandler con dependencias necesarias.
func NewBrainHandler(
	logger *zap.Logger,
	brains repository.BrainRepository,
	claims *service.ClaimTokenService,
	cache service.LeaderboardCache,
) *BrainHandler {
	return &BrainHandler{
		logger: logger,
		brains: brains,
		claims: claims,
		cache:  cache,
	}
}

// bearerToken extrae el token Authorization: Bearer si esta presente.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// GetBrain maneja GET /api/brain/:id.
func (h *BrainHandler) GetBrain(c *gin.Context) {
	brain, err := h.brains.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return
		}
		h.logger.Error("get brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch brain"})
		return
	}
	c.JSON(http.StatusOK, brain)
}

// GetBrainStats maneja GET /api/brain/:id/stats.
func (h *BrainHandler) GetBrainStats(c *gin.Context) {
	brain, err := h.brains.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return
		}
		h.logger.Error("get brain stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch brain"})
		return
	}
	c.JSON(http.StatusOK, brain.Stats())
}

// UpdateBrain maneja PUT /api/brain/:id.
// Acepta dimensiones parciales y/o visibilidad; recalcula el arquetipo.
func (h *BrainHandler) UpdateBrain(c *gin.Context) {
	var req struct {
		Dimensions map[string]float64 `json:"dimensions"`
		Public     *bool              `json:"public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update brain request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	brain, err := h.brains.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return
		}
		h.logger.Error("get brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch brain"})
		return
	}

	if err := h.claims.Authorize(brain, bearerToken(c)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized for this brain"})
		return
	}

	for name, value := range req.Dimensions {
		if !knownDimension(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown dimension: " + name})
			return
		}
		if value < 0 || value > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dimension values must be in [0,1]"})
			return
		}
		brain.Dimensions.Set(name, value)
	}
	if req.Public != nil {
		brain.Public = *req.Public
	}

	// El arquetipo es un campo derivado: se recalcula en cada escritura.
	brain.Archetype = service.DetermineArchetype(brain.Dimensions)
	brain.UpdatedAt = time.Now().UTC()

	if err := h.brains.Update(c.Request.Context(), brain); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return
		}
		h.logger.Error("update brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update brain"})
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusOK, brain)
}

// DeleteBrain maneja DELETE /api/brain/:id.
func (h *BrainHandler) DeleteBrain(c *gin.Context) {
	brain, err := h.brains.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return
		}
		h.logger.Error("get brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch brain"})
		return
	}

	if err := h.claims.Authorize(brain, bearerToken(c)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized for this brain"})
		return
	}

	if err := h.brains.Delete(c.Request.Context(), brain.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return
		}
		h.logger.Error("delete brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete brain"})
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context())
	}

	c.Status(http.StatusNoContent)
}

// ListBrains maneja GET /api/brains y lista brains publicos.
func (h *BrainHandler) ListBrains(c *gin.Context) {
	opts := repository.ListOptions{
		PublicOnly: true,
		Sort:       c.DefaultQuery("sort", "recent"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	if archetype := c.Query("archetype"); archetype != "" && archetype != "all" {
		opts.Archetype = domain.Archetype(archetype)
	}

	brains, total, err := h.brains.List(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error("list brains failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list brains"})
		return
	}
	if brains == nil {
		brains = []domain.Brain{}
	}

	c.JSON(http.StatusOK, gin.H{
		"brains": brains,
		"total":  total,
		"page":   opts.Page,
		"limit":  opts.Limit,
	})
}

// GetLeaderboard maneja GET /api/brains/leaderboard.
func (h *BrainHandler) GetLeaderboard(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	if h.cache != nil {
		if cached, ok := h.cache.Get(c.Request.Context(), limit); ok {
			c.JSON(http.StatusOK, gin.H{"leaderboard": cached})
			return
		}
	}

	brains, err := h.brains.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("leaderboard failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch leaderboard"})
		return
	}
	if brains == nil {
		brains = []domain.Brain{}
	}
	if h.cache != nil {
		h.cache.Set(c.Request.Context(), limit, brains)
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": brains})
}

// SearchBrains maneja GET /api/brains/search.
func (h *BrainHandler) SearchBrains(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	results, err := h.brains.Search(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("search brains failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search brains"})
		return
	}
	if results == nil {
		results = []domain.Brain{}
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "query": query})
}

// GetResonantBrains maneja GET /api/brains/resonant/:id.
// Busca los brains publicos mas afines usando distancia vectorial.
func (h *BrainHandler) GetResonantBrains(c *gin.Context) {
	brain, err := h.brains.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return
		}
		h.logger.Error("get brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch brain"})
		return
	}

	limit := queryInt(c, "limit", 5)
	if limit > maxResonantLimit {
		limit = maxResonantLimit
	}

	nearest, err := h.brains.Nearest(c.Request.Context(), brain.Dimensions, brain.ID, limit)
	if err != nil {
		h.logger.Error("nearest brains failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not find resonant brains"})
		return
	}

	matches := make([]gin.H, 0, len(nearest))
	for _, match := range nearest {
		matches = append(matches, gin.H{
			"brain":     match,
			"resonance": service.CalculateResonance(brain, match),
		})
	}

	c.JSON(http.StatusOK, gin.H{"brain_id": brain.ID, "matches": matches})
}

func knownDimension(name string) bool {
	for _, known := range domain.DimensionNames {
		if name == known {
			return true
		}
	}
	return false
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
