package http

import (
	"net/http"

	"go.uber.org/zap"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Logger *zap.Logger

	// Core services
	Annotations AnnotationService
	Books       BookSearch

	// Recommendations and genres are only served when the mirror is enabled.
	Recommender Recommender
	Genres      GenreStore

	// Task queue (optional)
	Reconcile ReconcileQueue

	// Health
	Database Pinger
	Version  string

	// Prometheus exposition handler (optional)
	MetricsHandler http.Handler
}
