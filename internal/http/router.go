package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil disable their routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := router.Group("/api")
	api.Use(RequireUser())

	// Summaries and memos
	if cfg.Annotations != nil {
		summaries := NewSummariesController(cfg.Annotations)
		api.GET("/summaries", summaries.List)
		api.GET("/summaries/:volumeId", summaries.Get)
		api.PUT("/summaries/:volumeId", summaries.Save)
		api.DELETE("/summaries/:volumeId", summaries.Delete)
		api.PUT("/summaries/:volumeId/visibility", summaries.SetVisibility)
		api.GET("/summaries/:volumeId/memos", summaries.ListMemos)
		api.POST("/summaries/:volumeId/memos", summaries.AddMemo)
		api.DELETE("/summaries/:volumeId/memos/:id", summaries.DeleteMemo)
	}

	// Provider search
	if cfg.Books != nil {
		books := NewBooksController(cfg.Books, cfg.Annotations)
		api.GET("/books/suggestions", books.Suggestions)
		api.GET("/books/search", books.Search)
		api.GET("/books/ranking", books.Ranking)
		if cfg.Annotations != nil {
			api.GET("/books/resolve", books.Resolve)
		}
	}

	// Recommendations and genres
	if cfg.Recommender != nil && cfg.Genres != nil {
		recs := NewRecommendationsController(cfg.Recommender, cfg.Genres)
		api.GET("/recommendations", recs.Recommend)
		api.GET("/genres", recs.GetGenres)
		api.PUT("/genres", recs.SetGenres)
	}

	// Task management endpoints
	if cfg.Reconcile != nil {
		tasks := NewTasksController(cfg.Reconcile)
		api.POST("/mirror/reconcile", tasks.Reconcile)
		api.GET("/tasks/:id", tasks.GetTaskStatus)
	}

	return router
}
