package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, shortcutsKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
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
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Shortcuts-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, shortcutsKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, shortcutsKey string) {
	// Main scrape endpoint, protected by the shared key
	r.POST("/scrape-and-insert", authMiddleware(shortcutsKey), handler.ScrapeAndInsert)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.HEAD("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "Media Scrape",
			"version":     "1.0.0",
			"description": "Media search aggregator with normalization, deduplication, and batch insertion",
			"endpoints": map[string]string{
				"scrape": "/scrape-and-insert (POST, requires X-Shortcuts-Key header)",
				"health": "/health",
				"stats":  "/stats",
			},
			"auth": map[string]interface{}{
				"header": "X-Shortcuts-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for protected endpoints
func authMiddleware(shortcutsKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get key from X-Shortcuts-Key header
		providedKey := c.GetHeader("X-Shortcuts-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Access key required",
				"message": "Provide key in X-Shortcuts-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != shortcutsKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid access key",
				"message": "The provided access key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
