// Package providers holds the contracts external book-metadata sources
// implement, plus the shared HTTP plumbing they are built on.
//
// # Implementations
//
//   - googlebooks.Client: Searcher (suggestions and full search)
//   - rakuten.Client: RankingSource (curated "hot" list, no query)
//
// Every provider converts its native response into entities.Book. Use
// AuthorOrUnknown and ISBNSelector so all providers normalize the same way.
package providers

import (
	"context"
	"strings"

	"github.com/mrlokans/bookmemo/internal/entities"
)

// Searcher answers free-text queries.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]entities.Book, error)
}

// RankingSource returns a provider-curated list of books.
type RankingSource interface {
	Name() string
	Ranking(ctx context.Context) ([]entities.Book, error)
}

// IsBlank reports whether query is empty after trimming whitespace.
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// AuthorOrUnknown returns the first non-empty author, or entities.UnknownAuthor.
func AuthorOrUnknown(authors ...string) string {
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			return a
		}
	}
	return entities.UnknownAuthor
}

// ISBNSelector picks one ISBN from a stream of identifiers: the first
// ISBN-13 wins, otherwise the first ISBN-10 seen.
type ISBNSelector struct {
	isbn13 string
	isbn10 string
}

// Add offers one identifier of the given type ("ISBN_13", "ISBN_10", ...).
func (s *ISBNSelector) Add(kind, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch kind {
	case "ISBN_13":
		if s.isbn13 == "" {
			s.isbn13 = value
		}
	case "ISBN_10":
		if s.isbn10 == "" {
			s.isbn10 = value
		}
	}
}

// Selected returns the chosen ISBN, or "" if none was offered.
func (s *ISBNSelector) Selected() string {
	if s.isbn13 != "" {
		return s.isbn13
	}
	return s.isbn10
}
