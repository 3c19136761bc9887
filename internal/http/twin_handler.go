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

// TwinHandler mantiene dependencias para los endpoints de twins.
type TwinHandler struct {
	logger *zap.Logger
	brains repository.BrainRepository
	engine *service.TwinEngine
}

// NewTwinHandler crea una instancia de TwinHandler con dependencias necesarias.
func NewTwinHandler(logger *zap.Logger, brains repository.BrainRepository, engine *service.TwinEngine) *TwinHandler {
	return &TwinHandler{logger: logger, brains: brains, engine: engine}
}

func (h *TwinHandler) resolveBrain(c *gin.Context) (domain.Brain, bool) {
	brain, err := h.brains.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "brain not found"})
			return domain.Brain{}, false
		}
		h.logger.Error("get brain failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch brain"})
		return domain.Brain{}, false
	}
	return brain, true
}

// twinQuery saca la consulta del body JSON o del query param.
func twinQuery(c *gin.Context) string {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && req.Query != "" {
		return req.Query
	}
	return c.Query("query")
}

// InvokeTwin maneja POST /api/brain/:id/twin/:twin_type.
func (h *TwinHandler) InvokeTwin(c *gin.Context) {
	twin := domain.TwinType(c.Param("twin_type"))
	if !twin.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "twin not found: " + string(twin)})
		return
	}

	brain, ok := h.resolveBrain(c)
	if !ok {
		return
	}

	resp, err := h.engine.Invoke(brain, twin, twinQuery(c))
	if err != nil {
		if errors.Is(err, service.ErrUnknownTwin) {
			c.JSON(http.StatusNotFound, gin.H{"error": "twin not found: " + string(twin)})
			return
		}
		h.logger.Error("invoke twin failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not invoke twin"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTwins maneja GET /api/twins con el catalogo estatico de twins y modos.
func (h *TwinHandler) ListTwins(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"twins": []gin.H{
			{"type": domain.TwinGuardian, "name": "Guardian", "description": "Protects boundaries, filters noise, maintains focus"},
			{"type": domain.TwinScout, "name": "Scout", "description": "Explores territory, finds connections, surfaces opportunities"},
			{"type": domain.TwinSynthesizer, "name": "Synthesizer", "description": "Merges ideas, creates coherence, builds frameworks"},
			{"type": domain.TwinMirror, "name": "Mirror", "description": "Reflects, questions, reveals blind spots"},
		},
		"modes": []gin.H{
			{"type": domain.TwinModeSingle, "name": "Single", "description": "Ask one twin for their perspective"},
			{"type": domain.TwinModeCouncil, "name": "Council", "description": "All 4 twins respond to the same question"},
			{"type": domain.TwinModeDebate, "name": "Debate", "description": "Two twins argue different perspectives"},
			{"type": domain.TwinModeRelay, "name": "Relay", "description": "Chain through all twins: filter → explore → synthesize → challenge"},
		},
	})
}

// InvokeCouncil maneja POST /api/brain/:id/council.
func (h *TwinHandler) InvokeCouncil(c *gin.Context) {
	brain, ok := h.resolveBrain(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.Council(brain, twinQuery(c)))
}

// InvokeDebate maneja POST /api/brain/:id/debate.
func (h *TwinHandler) InvokeDebate(c *gin.Context) {
	brain, ok := h.resolveBrain(c)
	if !ok {
		return
	}

	twin1 := domain.TwinType(c.DefaultQuery("twin_1", string(domain.TwinGuardian)))
	twin2 := domain.TwinType(c.DefaultQuery("twin_2", string(domain.TwinMirror)))
	rounds := queryInt(c, "rounds", 3)

	debate, err := h.engine.Debate(brain, twinQuery(c), twin1, twin2, rounds)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownTwin):
			c.JSON(http.StatusNotFound, gin.H{"error": "twin not found"})
		case errors.Is(err, service.ErrSameTwins):
			c.JSON(http.StatusBadRequest, gin.H{"error": "twins must be different"})
		default:
			h.logger.Error("debate failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not run debate"})
		}
		return
	}
	c.JSON(http.StatusOK, debate)
}

// InvokeRelay maneja POST /api/brain/:id/relay.
func (h *TwinHandler) InvokeRelay(c *gin.Context) {
	brain, ok := h.resolveBrain(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.Relay(brain, twinQuery(c)))
}

// GetTwinHistory maneja GET /api/brain/:id/twin-history.
func (h *TwinHandler) GetTwinHistory(c *gin.Context) {
	brain, ok := h.resolveBrain(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.History(brain.ID))
}
