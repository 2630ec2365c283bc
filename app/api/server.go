package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey, audioDir string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics", "/api/logs"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey, audioDir)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey, audioDir string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if audioDir != "" {
		r.Static("/static/audio", audioDir)
	}

	// Mutating endpoints require the key only when one is configured.
	protected := []gin.HandlerFunc{}
	if apiAccessKey != "" {
		protected = append(protected, authMiddleware(apiAccessKey))
		slog.Info("API authentication enabled for mutating endpoints")
	} else {
		slog.Warn("API authentication disabled (API_ACCESS_KEY not set)")
	}

	api := r.Group("/api")
	{
		api.GET("/summaries", handler.GetSummaries)
		api.GET("/generate_broadcast", handler.GenerateBroadcast)
		api.GET("/logs", handler.GetLogs)

		api.GET("/run_pipeline", append(protected, handler.RunPipeline)...)
		api.POST("/generate_audio", append(protected, handler.GenerateAudio)...)
		api.POST("/logs/clear", append(protected, handler.ClearLogs)...)
	}

	graphGroup := api.Group("/graph")
	{
		graphGroup.GET("/", handler.GetDigest)
		graphGroup.GET("/graph.json", handler.GetGraph)
		graphGroup.GET("/cypher", handler.GetGraphStatements)
		graphGroup.GET("/feeds", handler.ListSources)

		graphGroup.POST("/feeds", append(protected, handler.AddSource)...)
		graphGroup.DELETE("/feeds/:name", append(protected, handler.DeleteSource)...)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "RSS Digest",
			"description": "Multilingual news digest with summaries, broadcasts and an entity co-occurrence graph",
			"endpoints": map[string]string{
				"run_pipeline": "/api/run_pipeline",
				"summaries":    "/api/summaries",
				"broadcast":    "/api/generate_broadcast",
				"audio":        "/api/generate_audio (POST)",
				"digest":       "/api/graph/",
				"graph":        "/api/graph/graph.json?scope=sentence|paragraph",
				"cypher":       "/api/graph/cypher",
				"feeds":        "/api/graph/feeds",
				"logs":         "/api/logs?limit=100&clear=false",
				"health":       "/health",
				"metrics":      "/metrics",
			},
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
