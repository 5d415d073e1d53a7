// Package googlebooks is a client for the Google Books volumes API.
package googlebooks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/metrics"
	"github.com/mrlokans/bookmemo/internal/providers"
)

const (
	// ProviderName identifies Google Books in errors, logs and metrics.
	ProviderName = "googlebooks"

	DefaultBaseURL = "https://www.googleapis.com/books/v1"
)

// Volume is one item of a volumes response.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type VolumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Description         string               `json:"description"`
	ImageLinks          *ImageLinks          `json:"imageLinks"`
	Categories          []string             `json:"categories"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	PublishedDate       string               `json:"publishedDate"`
	InfoLink            string               `json:"infoLink"`
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

// Best returns the largest available image URL.
func (l *ImageLinks) Best() string {
	if l == nil {
		return ""
	}
	for _, u := range []string{l.ExtraLarge, l.Large, l.Medium, l.Small, l.Thumbnail, l.SmallThumbnail} {
		if u != "" {
			return u
		}
	}
	return ""
}

type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// ToBook converts a volume into the normalized Book shape.
func (v Volume) ToBook() entities.Book {
	info := v.VolumeInfo

	var isbn providers.ISBNSelector
	for _, id := range info.IndustryIdentifiers {
		isbn.Add(id.Type, id.Identifier)
	}

	thumbnail := ""
	if info.ImageLinks != nil {
		thumbnail = info.ImageLinks.Thumbnail
	}

	categories := info.Categories
	if categories == nil {
		categories = []string{}
	}

	return entities.Book{
		ID:            v.ID,
		Title:         info.Title,
		Author:        providers.AuthorOrUnknown(info.Authors...),
		Description:   info.Description,
		ThumbnailURL:  thumbnail,
		Categories:    categories,
		PublishedDate: info.PublishedDate,
		ISBN:          isbn.Selected(),
		InfoLink:      info.InfoLink,
	}
}

// Client queries the volumes endpoint. It is safe for concurrent use.
type Client struct {
	http    *providers.JSONClient
	baseURL string
	apiKey  string
}

// Config holds the client settings. Zero values fall back to defaults.
type Config struct {
	BaseURL string
	APIKey  string
	RPS     float64
}

// NewClient creates a Google Books client. An empty API key sends
// unauthenticated requests.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger, collector *metrics.Collector) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = providers.NewHTTPClient(providers.DefaultTimeouts())
	}
	return &Client{
		http:    providers.NewJSONClient(ProviderName, httpClient, cfg.RPS, logger, collector),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

func (c *Client) Name() string {
	return ProviderName
}

// Search returns normalized books for query. A blank query returns an empty
// list without a request.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]entities.Book, error) {
	if providers.IsBlank(query) {
		return []entities.Book{}, nil
	}
	volumes, err := c.Query(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	books := make([]entities.Book, 0, len(volumes))
	for _, v := range volumes {
		books = append(books, v.ToBook())
	}
	return books, nil
}

// Query runs a raw volumes query (q may use operators such as "isbn:").
// maxResults <= 0 leaves the API default.
func (c *Client) Query(ctx context.Context, q string, maxResults int) ([]Volume, error) {
	params := url.Values{}
	params.Set("q", q)
	if maxResults > 0 {
		params.Set("maxResults", strconv.Itoa(maxResults))
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp volumesResponse
	endpoint := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
	if err := c.http.GetJSON(ctx, "query", endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []Volume{}, nil
	}
	return resp.Items, nil
}

// GetVolume fetches a single volume. Returns apperrors.ErrNotFound on 404.
func (c *Client) GetVolume(ctx context.Context, volumeID string) (*Volume, error) {
	endpoint := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(volumeID))
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	var v Volume
	if err := c.http.GetJSON(ctx, "volume", endpoint, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
