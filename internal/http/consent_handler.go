package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mirrorbrain/internal/domain"
	"mirrorbrain/internal/repository"
)

// ConsentHandler mantiene dependencias para el registro de consentimientos.
type ConsentHandler struct {
	logger       *zap.Logger
	consents     repository.ConsentRepository
	adminKeyHash string
}

// NewConsentHandler crea una instancia de ConsentHandler.
// adminKeyHash es un hash bcrypt; vacio deja los endpoints de lectura cerrados.
func NewConsentHandler(logger *zap.Logger, consents repository.ConsentRepository, adminKeyHash string) *ConsentHandler {
	return &ConsentHandler{
		logger:       logger,
		consents:     consents,
		adminKeyHash: adminKeyHash,
	}
}

// authorizeAdmin verifica el header X-Admin-Key contra el hash configurado.
func (h *ConsentHandler) authorizeAdmin(c *gin.Context) bool {
	if h.adminKeyHash == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access not configured"})
		return false
	}
	key := strings.TrimSpace(c.GetHeader("X-Admin-Key"))
	if key == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing admin key"})
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.adminKeyHash), []byte(key)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
		return false
	}
	return true
}

// LogConsent maneja POST /api/consent/log.
func (h *ConsentHandler) LogConsent(c *gin.Context) {
	var req struct {
		Hash        string   `json:"hash"`
		ProofHash   string   `json:"proof_hash"`
		Timestamp   int64    `json:"timestamp" binding:"required"`
		Version     string   `json:"version"`
		Acks        []string `json:"acks"`
		Page        string   `json:"page"`
		Fingerprint string   `json:"fingerprint"`
		UserAgent   string   `json:"user_agent"`
		Screen      string   `json:"screen"`
		Timezone    string   `json:"timezone"`
		Language    string   `json:"language"`
		Referrer    string   `json:"referrer"`
		Type        string   `json:"type"`
		Feature     string   `json:"feature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid consent request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// El cliente manda el hash en uno de dos campos segun su version.
	proofHash := req.ProofHash
	if proofHash == "" {
		proofHash = req.Hash
	}
	if proofHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proof hash is required"})
		return
	}

	consentType := domain.ConsentTypeFull
	if req.Type == domain.ConsentTypeQuick {
		consentType = domain.ConsentTypeQuick
	}
	version := req.Version
	if version == "" {
		version = "1.0"
	}
	page := req.Page
	if page == "" {
		page = "/"
	}

	proof := domain.ConsentProof{
		ProofHash:   proofHash,
		Timestamp:   req.Timestamp,
		Version:     version,
		Acks:        req.Acks,
		Page:        page,
		Fingerprint: req.Fingerprint,
		UserAgent:   req.UserAgent,
		Screen:      req.Screen,
		Timezone:    req.Timezone,
		Language:    req.Language,
		Referrer:    req.Referrer,
		ConsentType: consentType,
		Feature:     req.Feature,
		LoggedAt:    time.Now().UTC(),
	}

	id, err := h.consents.Log(c.Request.Context(), proof)
	if err != nil {
		h.logger.Error("log consent failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log consent"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": id})
}

// GetStats maneja GET /api/consent/stats.
func (h *ConsentHandler) GetStats(c *gin.Context) {
	if !h.authorizeAdmin(c) {
		return
	}

	stats, err := h.consents.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("consent stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch consent stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetByFingerprint maneja GET /api/consent/fingerprint/:fp.
func (h *ConsentHandler) GetByFingerprint(c *gin.Context) {
	if !h.authorizeAdmin(c) {
		return
	}

	proofs, err := h.consents.GetByFingerprint(c.Request.Context(), c.Param("fp"))
	if err != nil {
		h.logger.Error("consent lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch consents"})
		return
	}
	if proofs == nil {
		proofs = []domain.ConsentProof{}
	}
	c.JSON(http.StatusOK, gin.H{"consents": proofs})
}
