package http

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"mirrorbrain/internal/domain"
)

// famousBrains son perfiles de ejemplo precargados para demos.
var famousBrains = map[string]domain.FamousBrain{
	"einstein": {
		Name:      "Albert Einstein",
		Archetype: domain.ArchetypeArchitect,
		Dimensions: domain.Dimensions{
			Topology: 0.95, Velocity: 0.4, Depth: 0.98, Entropy: 0.7, Evolution: 0.85,
		},
		NodeCount:       12000,
		ConnectionCount: 2800,
	},
	"davinci": {
		Name:      "Leonardo da Vinci",
		Archetype: domain.ArchetypeExplorer,
		Dimensions: domain.Dimensions{
			Topology: 0.99, Velocity: 0.6, Depth: 0.9, Entropy: 0.95, Evolution: 0.8,
		},
		NodeCount:       15000,
		ConnectionCount: 4200,
	},
	"jobs": {
		Name:      "Steve Jobs",
		Archetype: domain.ArchetypeBuilder,
		Dimensions: domain.Dimensions{
			Topology: 0.75, Velocity: 0.95, Depth: 0.7, Entropy: 0.6, Evolution: 0.9,
		},
		NodeCount:       8500,
		ConnectionCount: 1900,
	},
}

// FamousHandler sirve los brains famosos de demo.
type FamousHandler struct{}

// NewFamousHandler crea una instancia de FamousHandler.
func NewFamousHandler() *FamousHandler {
	return &FamousHandler{}
}

// ListFamousBrains maneja GET /api/famous.
func (h *FamousHandler) ListFamousBrains(c *gin.Context) {
	names := make([]string, 0, len(famousBrains))
	for name := range famousBrains {
		names = append(names, name)
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"famous": names})
}

// GetFamousBrain maneja GET /api/famous/:name.
func (h *FamousHandler) GetFamousBrain(c *gin.Context) {
	famous, ok := famousBrains[c.Param("name")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "famous brain not found"})
		return
	}
	c.JSON(http.StatusOK, famous)
}
