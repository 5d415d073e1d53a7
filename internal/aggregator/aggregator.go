// Package aggregator fans book queries out to every configured provider on
// the shared worker pool and merges their normalized results.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/providers"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

const (
	SuggestionLimit = 5
	SearchLimit     = 40
)

// Outcome is one provider's share of a Result.
type Outcome struct {
	Provider string `json:"provider"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failed reports whether the provider call failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Result is the merged answer of all providers, books in provider order.
type Result struct {
	Books    []entities.Book `json:"books"`
	Outcomes []Outcome       `json:"providers"`
}

func emptyResult() Result {
	return Result{Books: []entities.Book{}, Outcomes: []Outcome{}}
}

// AllFailedError is returned when every provider failed.
type AllFailedError struct {
	Outcomes []Outcome
}

func (e *AllFailedError) Error() string {
	msgs := make([]string, 0, len(e.Outcomes))
	for _, o := range e.Outcomes {
		msgs = append(msgs, fmt.Sprintf("%s: %s", o.Provider, o.Error))
	}
	return "all providers failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual provider errors to errors.Is / errors.As.
func (e *AllFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Outcomes))
	for _, o := range e.Outcomes {
		errs = append(errs, o.Err)
	}
	return errs
}

// Aggregator is safe for concurrent use.
type Aggregator struct {
	pool      *workerpool.Pool
	searchers []providers.Searcher
	ranking   providers.RankingSource
	logger    *zap.Logger
}

// New creates an aggregator. ranking may be nil, in which case Ranking
// resolves to an empty result.
func New(pool *workerpool.Pool, searchers []providers.Searcher, ranking providers.RankingSource, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		pool:      pool,
		searchers: searchers,
		ranking:   ranking,
		logger:    logger,
	}
}

// Suggestions returns up to SuggestionLimit books per provider.
func (a *Aggregator) Suggestions(ctx context.Context, query string) *workerpool.Future[Result] {
	return a.search(ctx, query, SuggestionLimit)
}

// Search returns up to SearchLimit books per provider.
func (a *Aggregator) Search(ctx context.Context, query string) *workerpool.Future[Result] {
	return a.search(ctx, query, SearchLimit)
}

func (a *Aggregator) search(ctx context.Context, query string, maxResults int) *workerpool.Future[Result] {
	if providers.IsBlank(query) || len(a.searchers) == 0 {
		return workerpool.Completed(emptyResult(), nil)
	}
	query = strings.TrimSpace(query)

	names := make([]string, len(a.searchers))
	futures := make([]*workerpool.Future[[]entities.Book], len(a.searchers))
	for i, s := range a.searchers {
		names[i] = s.Name()
		futures[i] = workerpool.SubmitContext(ctx, a.pool, func(ctx context.Context) ([]entities.Book, error) {
			return s.Search(ctx, query, maxResults)
		})
	}
	return a.combine(names, futures)
}

// Ranking returns the ranking provider's current list.
func (a *Aggregator) Ranking(ctx context.Context) *workerpool.Future[Result] {
	if a.ranking == nil {
		return workerpool.Completed(emptyResult(), nil)
	}
	source := a.ranking
	f := workerpool.SubmitContext(ctx, a.pool, func(ctx context.Context) ([]entities.Book, error) {
		return source.Ranking(ctx)
	})
	return a.combine([]string{source.Name()}, []*workerpool.Future[[]entities.Book]{f})
}

// combine waits for every provider future off the pool and merges them.
func (a *Aggregator) combine(names []string, futures []*workerpool.Future[[]entities.Book]) *workerpool.Future[Result] {
	return workerpool.Go(func() (Result, error) {
		result := emptyResult()
		failed := 0

		for i, f := range futures {
			books, err := f.Await(context.Background())

			outcome := Outcome{Provider: names[i]}
			if err != nil {
				failed++
				outcome.Err = err
				outcome.Error = apperrors.Message(err)
				a.logger.Warn("provider request failed",
					zap.String("provider", names[i]),
					zap.Error(err))
			} else {
				outcome.Count = len(books)
				result.Books = append(result.Books, books...)
			}
			result.Outcomes = append(result.Outcomes, outcome)
		}

		if failed == len(futures) {
			return result, &AllFailedError{Outcomes: result.Outcomes}
		}
		return result, nil
	})
}

// IsAllFailed reports whether err is an AllFailedError.
func IsAllFailed(err error) bool {
	var af *AllFailedError
	return errors.As(err, &af)
}
