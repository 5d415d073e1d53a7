// Package volumes resolves book identifiers to canonical volume ids and
// volume ids to display metadata.
package volumes

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/providers/googlebooks"
)

// DefaultLookupTimeout bounds a shared lookup once it no longer follows any
// single caller's context.
const DefaultLookupTimeout = 15 * time.Second

// API is the subset of the Google Books client the resolver needs.
type API interface {
	Query(ctx context.Context, q string, maxResults int) ([]googlebooks.Volume, error)
	GetVolume(ctx context.Context, volumeID string) (*googlebooks.Volume, error)
}

// Volume is the display metadata of a resolved volume.
type Volume struct {
	ID       string
	Title    string
	CoverURL string
}

// Resolver answers identifier and metadata lookups. Failures are returned
// as apperrors.ErrNotFound or *apperrors.TransportError; callers decide
// whether to degrade.
type Resolver struct {
	api     API
	group   singleflight.Group
	timeout time.Duration
}

func NewResolver(api API) *Resolver {
	return &Resolver{api: api, timeout: DefaultLookupTimeout}
}

// ResolveVolumeID maps an ISBN (or other identifier) to a volume id.
func (r *Resolver) ResolveVolumeID(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", &apperrors.ValidationError{Field: "identifier", Reason: "must not be empty"}
	}

	items, err := r.api.Query(ctx, "isbn:"+identifier, 0)
	if err != nil {
		return "", err
	}
	if len(items) == 0 || items[0].ID == "" {
		return "", apperrors.ErrNotFound
	}
	return items[0].ID, nil
}

// Lookup fetches title and cover for volumeID. Concurrent lookups of the
// same id share one request, which is detached from any one caller's
// cancellation; each caller still returns when its own ctx ends.
func (r *Resolver) Lookup(ctx context.Context, volumeID string) (*Volume, error) {
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(volumeID, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(shared, r.timeout)
		defer cancel()

		vol, err := r.api.GetVolume(lctx, volumeID)
		if err != nil {
			return nil, err
		}
		return &Volume{
			ID:       volumeID,
			Title:    vol.VolumeInfo.Title,
			CoverURL: vol.VolumeInfo.ImageLinks.Best(),
		}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Volume), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Resolver) FetchTitle(ctx context.Context, volumeID string) (string, error) {
	v, err := r.Lookup(ctx, volumeID)
	if err != nil {
		return "", err
	}
	return v.Title, nil
}

func (r *Resolver) FetchCoverURL(ctx context.Context, volumeID string) (string, error) {
	v, err := r.Lookup(ctx, volumeID)
	if err != nil {
		return "", err
	}
	return v.CoverURL, nil
}

// FetchBook returns the full normalized book for volumeID.
func (r *Resolver) FetchBook(ctx context.Context, volumeID string) (entities.Book, error) {
	vol, err := r.api.GetVolume(ctx, volumeID)
	if err != nil {
		return entities.Book{}, err
	}
	book := vol.ToBook()
	if book.ID == "" {
		book.ID = volumeID
	}
	return book, nil
}
