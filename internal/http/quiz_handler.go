package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mirrorbrain/internal/domain"
	"mirrorbrain/internal/repository"
	"mirrorbrain/internal/service"
)

// QuizHandler mantiene dependencias para los endpoints del quiz.
type QuizHandler struct {
	logger  *zap.Logger
	brains  repository.BrainRepository
	claims  *service.ClaimTokenService
	limiter service.SubmitRateLimiter
	cache   service.LeaderboardCache
}

// NewQuizHandler crea una instancia de QuizHandler con dependencias necesarias.
func NewQuizHandler(
	logger *zap.Logger,
	brains repository.BrainRepository,
	claims *service.ClaimTokenService,
	limiter service.SubmitRateLimiter,
	cache service.LeaderboardCache,
) *QuizHandler {
	return &QuizHandler{
		logger:  logger,
		brains:  brains,
		claims:  claims,
		limiter: limiter,
		cache:   cache,
	}
}

// GetQuestions maneja GET /api/quiz/questions.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": service.Questions()})
}

// SubmitQuiz maneja POST /api/quiz/submit.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req domain.QuizSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid quiz submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many submissions, slow down"})
		return
	}

	result, err := service.ProcessQuiz(req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("process quiz failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process quiz"})
		return
	}

	now := time.Now().UTC()
	result.CreatedAt = now
	brain := domain.Brain{
		ID:              result.BrainID,
		UserID:          req.UserID,
		Archetype:       result.Archetype,
		Dimensions:      result.Dimensions,
		NodeCount:       result.NodeCount,
		ConnectionCount: result.ConnectionCount,
		Public:          false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.brains.Create(c.Request.Context(), brain); err != nil {
		h.logger.Error("create brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store brain"})
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context())
	}

	claimToken, err := h.claims.Generate(brain.ID, brain.UserID)
	if err != nil {
		h.logger.Warn("claim token generation failed", zap.Error(err), zap.String("brain_id", brain.ID))
	}

	resp := gin.H{"result": result}
	if claimToken != "" {
		resp["claim_token"] = claimToken
	}
	c.JSON(http.StatusCreated, resp)
}

// GetArchetypes maneja GET /api/archetypes y devuelve el catalogo estatico.
func (h *QuizHandler) GetArchetypes(c *gin.Context) {
	catalog := make(gin.H, len(domain.ArchetypePriority))
	for _, archetype := range domain.ArchetypePriority {
		info := domain.ArchetypeCatalog[archetype]
		catalog[string(archetype)] = gin.H{
			"name":        info.Name,
			"emoji":       info.Emoji,
			"description": info.Description,
			"strengths":   info.Strengths,
		}
	}
	c.JSON(http.StatusOK, catalog)
}
