package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookmemo/internal/aggregator"
	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/recommend"
	"github.com/mrlokans/bookmemo/internal/repository"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

// This file consolidates the service interfaces used by HTTP controllers.
// Production wiring passes the concrete repository, aggregator, engine and
// task client; tests pass fakes.

// AnnotationService is the reader's summaries and memos.
type AnnotationService interface {
	GetAllSummaries(ctx context.Context, uid string) *workerpool.Future[[]repository.SummaryItem]
	GetDetail(ctx context.Context, uid, volumeID string) *workerpool.Future[*repository.Detail]
	SaveSummary(ctx context.Context, summary entities.Summary) *workerpool.Future[struct{}]
	SetPublicStatus(ctx context.Context, uid, volumeID string, isPublic bool) *workerpool.Future[struct{}]
	DeleteVolume(ctx context.Context, uid, volumeID string) *workerpool.Future[struct{}]

	ListMemos(ctx context.Context, uid, volumeID string) *workerpool.Future[[]entities.HighlightMemo]
	AddMemo(ctx context.Context, uid, volumeID string, page, line int, memo string) *workerpool.Future[int64]
	DeleteMemo(ctx context.Context, uid, volumeID string, id int64) *workerpool.Future[struct{}]

	ResolveVolumeID(ctx context.Context, identifier string) *workerpool.Future[string]
}

// BookSearch fans queries out to the external providers.
type BookSearch interface {
	Suggestions(ctx context.Context, query string) *workerpool.Future[aggregator.Result]
	Search(ctx context.Context, query string) *workerpool.Future[aggregator.Result]
	Ranking(ctx context.Context) *workerpool.Future[aggregator.Result]
}

// Recommender builds genre-aware recommendations.
type Recommender interface {
	Recommend(ctx context.Context, uid string) *workerpool.Future[recommend.Recommendations]
}

// GenreStore reads and writes a reader's favorite genres.
type GenreStore interface {
	FavoriteGenres(ctx context.Context, uid string) ([]string, error)
	SetFavoriteGenres(ctx context.Context, uid string, genres []string) error
}

// ReconcileQueue enqueues background mirror repairs.
type ReconcileQueue interface {
	EnqueueReconcile(ctx context.Context, uid string) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping() error
}
