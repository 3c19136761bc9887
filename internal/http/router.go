package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	version string,
	quizH *QuizHandler,
	brainH *BrainHandler,
	resonanceH *ResonanceHandler,
	twinH *TwinHandler,
	famousH *FamousHandler,
	consentH *ConsentHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(), jsonContentTypeMiddleware())

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   version,
			"timestamp": time.Now().UTC(),
		})
	}
	r.GET("/", health)
	r.GET("/health", health)

	api := r.Group("/api")

	quiz := api.Group("/quiz")
	quiz.GET("/questions", quizH.GetQuestions)
	quiz.POST("/submit", quizH.SubmitQuiz)

	api.GET("/archetypes", quizH.GetArchetypes)

	brain := api.Group("/brain")
	brain.GET("/:id", brainH.GetBrain)
	brain.GET("/:id/stats", brainH.GetBrainStats)
	brain.PUT("/:id", brainH.UpdateBrain)
	brain.DELETE("/:id", brainH.DeleteBrain)
	brain.GET("/:id/compare/:id2", resonanceH.CompareBrains)
	brain.POST("/:id/twin/:twin_type", twinH.InvokeTwin)
	brain.POST("/:id/council", twinH.InvokeCouncil)
	brain.POST("/:id/debate", twinH.InvokeDebate)
	brain.POST("/:id/relay", twinH.InvokeRelay)
	brain.GET("/:id/twin-history", twinH.GetTwinHistory)

	brains := api.Group("/brains")
	brains.GET("", brainH.ListBrains)
	brains.GET("/leaderboard", brainH.GetLeaderboard)
	brains.GET("/search", brainH.SearchBrains)
	brains.GET("/resonant/:id", brainH.GetResonantBrains)

	api.POST("/resonance", resonanceH.CalculateResonance)
	api.GET("/twins", twinH.ListTwins)

	api.GET("/famous", famousH.ListFamousBrains)
	api.GET("/famous/:name", famousH.GetFamousBrain)

	consent := api.Group("/consent")
	consent.POST("/log", consentH.LogConsent)
	consent.GET("/stats", consentH.GetStats)
	consent.GET("/fingerprint/:fp", consentH.GetByFingerprint)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// corsMiddleware habilita acceso web abierto al API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
