package entities

// UnknownAuthor is used when a provider lists no author.
const UnknownAuthor = "unknown"

// Book is the normalized shape every provider result is converted into.
// Books are rebuilt per request and never persisted.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description,omitempty"`
	ThumbnailURL  string   `json:"thumbnailUrl,omitempty"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`

	// Set by ranking providers that link to their own store pages.
	ItemURL       string `json:"itemUrl,omitempty"`
	LargeImageURL string `json:"largeImageUrl,omitempty"`
}
