package recommend

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/mirror"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

const (
	DefaultCandidates = 30
	DefaultLimit      = 10
	// DefaultMirrorTimeout bounds each DynamoDB read.
	DefaultMirrorTimeout = 10 * time.Second

	fetchConcurrency = 4
)

type GenreSource interface {
	FavoriteGenres(ctx context.Context, uid string) ([]string, error)
}

type CandidateSource interface {
	ListPublic(ctx context.Context, limit int) ([]mirror.Record, error)
}

type BookFetcher interface {
	FetchBook(ctx context.Context, volumeID string) (entities.Book, error)
}

// Recommendations is the answer for one reader.
type Recommendations struct {
	Genres   []string        `json:"genres"`
	Matching []entities.Book `json:"matching"`
	Others   []entities.Book `json:"others"`
}

type EngineConfig struct {
	Candidates    int
	Limit         int
	MirrorTimeout time.Duration
}

// Engine builds recommendations from books other readers made public.
type Engine struct {
	pool       *workerpool.Pool
	genres     GenreSource
	candidates CandidateSource
	books      BookFetcher
	cfg        EngineConfig
	logger     *zap.Logger

	// shuffle is replaced in tests for deterministic order.
	shuffle func([]entities.Book)
}

func NewEngine(pool *workerpool.Pool, genres GenreSource, candidates CandidateSource, books BookFetcher, cfg EngineConfig, logger *zap.Logger) *Engine {
	if cfg.Candidates <= 0 {
		cfg.Candidates = DefaultCandidates
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.MirrorTimeout <= 0 {
		cfg.MirrorTimeout = DefaultMirrorTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		pool:       pool,
		genres:     genres,
		candidates: candidates,
		books:      books,
		cfg:        cfg,
		logger:     logger,
		shuffle: func(books []entities.Book) {
			rand.Shuffle(len(books), func(i, j int) { books[i], books[j] = books[j], books[i] })
		},
	}
}

// Recommend runs on the pool and resolves with the reader's recommendations.
func (e *Engine) Recommend(ctx context.Context, uid string) *workerpool.Future[Recommendations] {
	return workerpool.SubmitContext(ctx, e.pool, func(ctx context.Context) (Recommendations, error) {
		return e.recommend(ctx, uid)
	})
}

func (e *Engine) recommend(ctx context.Context, uid string) (Recommendations, error) {
	favorites, err := e.favoriteGenres(ctx, uid)
	if err != nil {
		return Recommendations{}, err
	}

	records, err := e.listPublic(ctx)
	if err != nil {
		return Recommendations{}, err
	}

	books := e.fetch(ctx, uniqueVolumeIDs(records))
	e.shuffle(books)

	matching, others := Partition(books, favorites)
	return Recommendations{
		Genres:   favorites,
		Matching: capBooks(matching, e.cfg.Limit),
		Others:   capBooks(others, e.cfg.Limit),
	}, nil
}

func (e *Engine) favoriteGenres(ctx context.Context, uid string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.MirrorTimeout)
	defer cancel()
	return e.genres.FavoriteGenres(ctx, uid)
}

func (e *Engine) listPublic(ctx context.Context) ([]mirror.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.MirrorTimeout)
	defer cancel()
	return e.candidates.ListPublic(ctx, e.cfg.Candidates)
}

func uniqueVolumeIDs(records []mirror.Record) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.VolumeID == "" {
			continue
		}
		if _, ok := seen[r.VolumeID]; ok {
			continue
		}
		seen[r.VolumeID] = struct{}{}
		ids = append(ids, r.VolumeID)
	}
	return ids
}

// fetch resolves every id it can; failures are logged and skipped.
func (e *Engine) fetch(ctx context.Context, ids []string) []entities.Book {
	results := make([]*entities.Book, len(ids))

	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			book, err := e.books.FetchBook(ctx, id)
			if err != nil {
				e.logger.Warn("skipping recommendation candidate",
					zap.String("volume_id", id),
					zap.Error(err))
				return nil
			}
			results[i] = &book
			return nil
		})
	}
	_ = g.Wait()

	books := make([]entities.Book, 0, len(ids))
	for _, b := range results {
		if b != nil {
			books = append(books, *b)
		}
	}
	return books
}

func capBooks(books []entities.Book, limit int) []entities.Book {
	if len(books) > limit {
		return books[:limit]
	}
	return books
}
