package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookmemo/internal/aggregator"
	"github.com/mrlokans/bookmemo/internal/database"
	"github.com/mrlokans/bookmemo/internal/http"
	"github.com/mrlokans/bookmemo/internal/mirror"
	"github.com/mrlokans/bookmemo/internal/providers"
	"github.com/mrlokans/bookmemo/internal/providers/googlebooks"
	"github.com/mrlokans/bookmemo/internal/providers/rakuten"
	"github.com/mrlokans/bookmemo/internal/recommend"
	"github.com/mrlokans/bookmemo/internal/repository"
	"github.com/mrlokans/bookmemo/internal/scheduler"
	"github.com/mrlokans/bookmemo/internal/tasks"
	"github.com/mrlokans/bookmemo/internal/volumes"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Local annotation store
var _ repository.Store = (*database.AnnotationStore)(nil)
var _ tasks.SummarySource = (*database.AnnotationStore)(nil)
var _ http.Pinger = (*database.Database)(nil)

// Public mirror
var _ repository.Mirror = (*mirror.Mirror)(nil)
var _ tasks.Publisher = (*mirror.Mirror)(nil)
var _ recommend.CandidateSource = (*mirror.Mirror)(nil)

// Favorite genres
var _ recommend.GenreSource = (*mirror.GenreStore)(nil)
var _ http.GenreStore = (*mirror.GenreStore)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ providers.Searcher = (*googlebooks.Client)(nil)
var _ providers.RankingSource = (*rakuten.Client)(nil)
var _ volumes.API = (*googlebooks.Client)(nil)

// Volume resolution
var _ repository.Resolver = (*volumes.Resolver)(nil)
var _ recommend.BookFetcher = (*volumes.Resolver)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.AnnotationService = (*repository.AnnotationRepository)(nil)
var _ http.BookSearch = (*aggregator.Aggregator)(nil)
var _ http.Recommender = (*recommend.Engine)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.ReconcileQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
