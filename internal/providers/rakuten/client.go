// Package rakuten fetches the Rakuten Kobo best-seller ranking and enriches
// each entry with a Google Books identity.
package rakuten

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/metrics"
	"github.com/mrlokans/bookmemo/internal/providers"
)

const (
	ProviderName   = "rakuten"
	DefaultBaseURL = "https://app.rakuten.co.jp/services/api/Kobo/BookSearch/20170424"

	genreID  = "001"
	elements = "title,author,itemUrl,largeImageUrl"
	hits     = "10"

	enrichConcurrency = 4
)

type item struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ItemURL       string `json:"itemUrl"`
	LargeImageURL string `json:"largeImageUrl"`
}

// rankingItem accepts both the wrapped {"Item":{...}} layout and the flat
// layout returned with formatVersion=2.
type rankingItem struct {
	item
}

func (r *rankingItem) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Item *item `json:"Item"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Item != nil {
		r.item = *wrapped.Item
		return nil
	}
	return json.Unmarshal(data, &r.item)
}

type rankingResponse struct {
	Items []rankingItem `json:"Items"`
}

// Client is a RankingSource. It is safe for concurrent use.
type Client struct {
	http          *providers.JSONClient
	baseURL       string
	applicationID string
	enricher      providers.Searcher
	logger        *zap.Logger
}

type Config struct {
	BaseURL       string
	ApplicationID string
	RPS           float64
}

// NewClient creates a ranking client. enricher may be nil, in which case
// books keep only the Rakuten fields.
func NewClient(cfg Config, httpClient *http.Client, enricher providers.Searcher, logger *zap.Logger, collector *metrics.Collector) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = providers.NewHTTPClient(providers.DefaultTimeouts())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:          providers.NewJSONClient(ProviderName, httpClient, cfg.RPS, logger, collector),
		baseURL:       baseURL,
		applicationID: cfg.ApplicationID,
		enricher:      enricher,
		logger:        logger,
	}
}

func (c *Client) Name() string {
	return ProviderName
}

// Ranking returns the current top books. Enrichment failures are logged and
// leave the affected book as Rakuten returned it.
func (c *Client) Ranking(ctx context.Context) ([]entities.Book, error) {
	params := url.Values{}
	params.Set("applicationId", c.applicationID)
	params.Set("booksGenreId", genreID)
	params.Set("formatVersion", "2")
	params.Set("elements", elements)
	params.Set("hits", hits)

	var resp rankingResponse
	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	if err := c.http.GetJSON(ctx, "ranking", endpoint, &resp); err != nil {
		return nil, err
	}

	books := make([]entities.Book, len(resp.Items))
	for i, it := range resp.Items {
		books[i] = entities.Book{
			Title:         it.Title,
			Author:        providers.AuthorOrUnknown(it.Author),
			ThumbnailURL:  it.LargeImageURL,
			Categories:    []string{},
			ItemURL:       it.ItemURL,
			LargeImageURL: it.LargeImageURL,
		}
	}

	if c.enricher != nil {
		c.enrich(ctx, books)
	}
	return books, nil
}

func (c *Client) enrich(ctx context.Context, books []entities.Book) {
	var g errgroup.Group
	g.SetLimit(enrichConcurrency)

	for i := range books {
		book := &books[i]
		g.Go(func() error {
			query := strings.TrimSpace(book.Title + " " + book.Author)
			matches, err := c.enricher.Search(ctx, query, 1)
			if err != nil {
				c.logger.Warn("ranking enrichment failed",
					zap.String("title", book.Title),
					zap.Error(err))
				return nil
			}
			if len(matches) == 0 {
				return nil
			}
			match := matches[0]
			book.ID = match.ID
			book.InfoLink = match.InfoLink
			if match.ThumbnailURL != "" {
				book.ThumbnailURL = match.ThumbnailURL
			}
			return nil
		})
	}
	_ = g.Wait()
}
