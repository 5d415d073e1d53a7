package rakuten

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/entities"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]entities.Book
	fail    map[string]bool
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int) ([]entities.Book, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if maxResults != 1 {
		return nil, errors.New("unexpected maxResults")
	}
	if f.fail[query] {
		return nil, &apperrors.TransportError{Service: "fake", StatusCode: 503}
	}
	return f.results[query], nil
}

const wrappedResponse = `{"Items":[
  {"Item":{"title":"Norwegian Wood","author":"Haruki Murakami","itemUrl":"https://books.rakuten/1","largeImageUrl":"https://img/1"}},
  {"Item":{"title":"Kitchen","author":"","itemUrl":"https://books.rakuten/2","largeImageUrl":"https://img/2"}}
]}`

const flatResponse = `{"Items":[
  {"title":"Norwegian Wood","author":"Haruki Murakami","itemUrl":"https://books.rakuten/1","largeImageUrl":"https://img/1"}
]}`

func TestRanking_RequestParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "app-id", q.Get("applicationId"))
		assert.Equal(t, "001", q.Get("booksGenreId"))
		assert.Equal(t, "2", q.Get("formatVersion"))
		assert.Equal(t, "title,author,itemUrl,largeImageUrl", q.Get("elements"))
		assert.Equal(t, "10", q.Get("hits"))
		_, _ = w.Write([]byte(flatResponse))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, ApplicationID: "app-id"}, server.Client(), nil, zap.NewNop(), nil)
	books, err := client.Ranking(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Norwegian Wood", books[0].Title)
	assert.Equal(t, "https://img/1", books[0].ThumbnailURL)
	assert.Equal(t, "https://books.rakuten/1", books[0].ItemURL)
}

func TestRanking_EnrichesAndToleratesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(wrappedResponse))
	}))
	defer server.Close()

	enricher := &fakeSearcher{
		results: map[string][]entities.Book{
			"Norwegian Wood Haruki Murakami": {{ID: "gb-1", InfoLink: "https://books.google/gb-1", ThumbnailURL: "https://gimg/1"}},
		},
		fail: map[string]bool{"Kitchen unknown": true},
	}

	client := NewClient(Config{BaseURL: server.URL}, server.Client(), enricher, zap.NewNop(), nil)
	books, err := client.Ranking(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "gb-1", books[0].ID)
	assert.Equal(t, "https://books.google/gb-1", books[0].InfoLink)
	assert.Equal(t, "https://gimg/1", books[0].ThumbnailURL)
	assert.Equal(t, "https://img/1", books[0].LargeImageURL)

	assert.Equal(t, "Kitchen", books[1].Title)
	assert.Equal(t, "unknown", books[1].Author)
	assert.Empty(t, books[1].ID)
	assert.Equal(t, "https://img/2", books[1].ThumbnailURL)

	assert.ElementsMatch(t, []string{"Norwegian Wood Haruki Murakami", "Kitchen unknown"}, enricher.queries)
}

func TestRanking_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"wrong_parameter"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, server.Client(), nil, zap.NewNop(), nil)
	_, err := client.Ranking(context.Background())

	var te *apperrors.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Contains(t, te.Message, "wrong_parameter")
}

func TestRanking_EmptyItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Items":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, server.Client(), nil, zap.NewNop(), nil)
	books, err := client.Ranking(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}
