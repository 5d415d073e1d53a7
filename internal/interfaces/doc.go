// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - repository.Store: local summaries and memos (internal/repository/repository.go)
//   - repository.Mirror: public DynamoDB mirror (internal/repository/repository.go)
//   - tasks.SummarySource, tasks.Publisher: reconcile inputs (internal/tasks/reconcile.go)
//   - recommend.GenreSource, recommend.CandidateSource: recommendation inputs (internal/recommend/engine.go)
//
// ## External Service Interfaces
//
//   - providers.Searcher: keyword book search (internal/providers/provider.go)
//   - providers.RankingSource: ranked book lists (internal/providers/provider.go)
//   - volumes.API: Google Books volume lookup (internal/volumes/resolver.go)
//
// ## HTTP Service Interfaces
//
// Controllers depend on the interfaces in internal/http/stores.go. Every
// long-running operation returns a *workerpool.Future so that the work runs
// on the shared bounded pool rather than on the request goroutine.
//
// # Adding a New Search Provider
//
//  1. Create a client in internal/providers/<name>/ on top of
//     providers.JSONClient, which brings rate limiting, the circuit breaker
//     and metrics:
//
//     type Client struct {
//         http    *providers.JSONClient
//         baseURL string
//     }
//
//     func (c *Client) Name() string
//     func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]entities.Book, error)
//
//     var _ providers.Searcher = (*Client)(nil)
//
//  2. Append it to the searchers passed to aggregator.New in entrypoint.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
