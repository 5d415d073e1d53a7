// Package recommend splits candidate books by the reader's favorite genres
// and builds recommendation lists from the public mirror.
package recommend

import (
	"strings"

	"github.com/mrlokans/bookmemo/internal/entities"
)

func normalizeGenre(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}

// Partition splits candidates into books with at least one category among
// favorites and the rest. Both outputs keep the input order and together
// contain every candidate exactly once. Matching is case-insensitive on
// trimmed names.
func Partition(candidates []entities.Book, favorites []string) (matching, nonMatching []entities.Book) {
	matching = make([]entities.Book, 0, len(candidates))
	nonMatching = make([]entities.Book, 0, len(candidates))

	wanted := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		if n := normalizeGenre(f); n != "" {
			wanted[n] = struct{}{}
		}
	}

	for _, book := range candidates {
		if matches(book.Categories, wanted) {
			matching = append(matching, book)
		} else {
			nonMatching = append(nonMatching, book)
		}
	}
	return matching, nonMatching
}

func matches(categories []string, wanted map[string]struct{}) bool {
	if len(wanted) == 0 {
		return false
	}
	for _, c := range categories {
		if _, ok := wanted[normalizeGenre(c)]; ok {
			return true
		}
	}
	return false
}
