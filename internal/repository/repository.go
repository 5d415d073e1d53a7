// Package repository coordinates the local annotation store, the public
// mirror and volume metadata lookups. Every operation runs on the shared
// worker pool and returns a future.
//
// # Publication
//
// SaveSummary writes the local row first. When that succeeds the mirror is
// brought in line: a public summary is published, a private one is removed.
// A mirror failure after a successful local write is reported as
// *apperrors.PartialWriteError and is not rolled back; see the tasks package
// for the reconcile path.
//
// # Metadata
//
// Titles and covers come from the volume resolver. Lookup failures are
// logged and degrade to empty strings; they never fail an operation.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/volumes"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

const (
	DefaultStoreTimeout  = 10 * time.Second
	DefaultMirrorTimeout = 10 * time.Second

	lookupConcurrency = 4
)

// Store is the local annotation persistence.
type Store interface {
	GetSummary(ctx context.Context, uid, volumeID string) (*entities.Summary, error)
	UpsertSummary(ctx context.Context, summary *entities.Summary) error
	DeleteSummary(ctx context.Context, uid, volumeID string) (int64, error)
	ListSummaries(ctx context.Context, uid string) ([]entities.Summary, error)
	ListMemos(ctx context.Context, uid, volumeID string) ([]entities.HighlightMemo, error)
	InsertMemo(ctx context.Context, memo *entities.HighlightMemo) (int64, error)
	DeleteMemo(ctx context.Context, memo *entities.HighlightMemo) (int64, error)
	DeleteAllMemos(ctx context.Context, uid, volumeID string) (int64, error)
}

// Mirror is the shared store of public summaries.
type Mirror interface {
	Publish(ctx context.Context, uid, volumeID string, overallSummary *string) error
	Unpublish(ctx context.Context, uid, volumeID string) error
}

// Resolver maps identifiers to volumes and volumes to display metadata.
type Resolver interface {
	ResolveVolumeID(ctx context.Context, identifier string) (string, error)
	Lookup(ctx context.Context, volumeID string) (*volumes.Volume, error)
}

// SummaryItem is one row of the reader's summary list.
type SummaryItem struct {
	VolumeID string `json:"volumeId"`
	Title    string `json:"title"`
	CoverURL string `json:"coverUrl"`
	IsPublic bool   `json:"isPublic"`
}

// Detail is the full view of one summary.
type Detail struct {
	VolumeID       string  `json:"volumeId"`
	Title          string  `json:"title"`
	CoverURL       string  `json:"coverUrl"`
	OverallSummary *string `json:"overallSummary"`
	IsPublic       bool    `json:"isPublic"`
	Status         string  `json:"status"`
}

// Deps are the collaborators of an AnnotationRepository. Mirror may be nil
// when publication is disabled; Resolver may be nil when no metadata source
// is configured.
type Deps struct {
	Pool     *workerpool.Pool
	Store    Store
	Mirror   Mirror
	Resolver Resolver
	Logger   *zap.Logger

	StoreTimeout  time.Duration
	MirrorTimeout time.Duration
}

// AnnotationRepository is safe for concurrent use.
type AnnotationRepository struct {
	pool     *workerpool.Pool
	store    Store
	mirror   Mirror
	resolver Resolver
	logger   *zap.Logger

	storeTimeout  time.Duration
	mirrorTimeout time.Duration
}

func New(d Deps) *AnnotationRepository {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.StoreTimeout <= 0 {
		d.StoreTimeout = DefaultStoreTimeout
	}
	if d.MirrorTimeout <= 0 {
		d.MirrorTimeout = DefaultMirrorTimeout
	}
	return &AnnotationRepository{
		pool:          d.Pool,
		store:         d.Store,
		mirror:        d.Mirror,
		resolver:      d.Resolver,
		logger:        d.Logger,
		storeTimeout:  d.StoreTimeout,
		mirrorTimeout: d.MirrorTimeout,
	}
}

func (r *AnnotationRepository) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.storeTimeout)
}

func (r *AnnotationRepository) mirrorCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.mirrorTimeout)
}

func requireUID(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return &apperrors.ValidationError{Field: "uid", Reason: "is required"}
	}
	return nil
}

func requireVolume(uid, volumeID string) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if strings.TrimSpace(volumeID) == "" {
		return &apperrors.ValidationError{Field: "volumeId", Reason: "is required"}
	}
	return nil
}

// GetAllSummaries lists the reader's summaries with title and cover.
func (r *AnnotationRepository) GetAllSummaries(ctx context.Context, uid string) *workerpool.Future[[]SummaryItem] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) ([]SummaryItem, error) {
		if err := requireUID(uid); err != nil {
			return nil, err
		}

		sctx, cancel := r.storeCtx(ctx)
		summaries, err := r.store.ListSummaries(sctx, uid)
		cancel()
		if err != nil {
			return nil, err
		}

		items := make([]SummaryItem, len(summaries))
		var g errgroup.Group
		g.SetLimit(lookupConcurrency)
		for i, s := range summaries {
			g.Go(func() error {
				vol := r.lookup(ctx, s.VolumeID)
				items[i] = SummaryItem{
					VolumeID: s.VolumeID,
					Title:    vol.Title,
					CoverURL: vol.CoverURL,
					IsPublic: s.IsPublic,
				}
				return nil
			})
		}
		_ = g.Wait()
		return items, nil
	})
}

// GetDetail returns the summary view for one volume, or nil when the reader
// has no summary for it.
func (r *AnnotationRepository) GetDetail(ctx context.Context, uid, volumeID string) *workerpool.Future[*Detail] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) (*Detail, error) {
		if err := requireVolume(uid, volumeID); err != nil {
			return nil, err
		}

		sctx, cancel := r.storeCtx(ctx)
		summary, err := r.store.GetSummary(sctx, uid, volumeID)
		cancel()
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		vol := r.lookup(ctx, volumeID)
		return &Detail{
			VolumeID:       volumeID,
			Title:          vol.Title,
			CoverURL:       vol.CoverURL,
			OverallSummary: summary.OverallSummary,
			IsPublic:       summary.IsPublic,
			Status:         summary.Status(),
		}, nil
	})
}

// SaveSummary stores summary and updates the mirror to match its visibility.
func (r *AnnotationRepository) SaveSummary(ctx context.Context, summary entities.Summary) *workerpool.Future[struct{}] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.saveSummary(ctx, &summary)
	})
}

// SetPublicStatus changes only the visibility of an existing summary.
func (r *AnnotationRepository) SetPublicStatus(ctx context.Context, uid, volumeID string, isPublic bool) *workerpool.Future[struct{}] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) (struct{}, error) {
		if err := requireVolume(uid, volumeID); err != nil {
			return struct{}{}, err
		}

		sctx, cancel := r.storeCtx(ctx)
		summary, err := r.store.GetSummary(sctx, uid, volumeID)
		cancel()
		if err != nil {
			return struct{}{}, err
		}

		summary.IsPublic = isPublic
		return struct{}{}, r.saveSummary(ctx, summary)
	})
}

func (r *AnnotationRepository) saveSummary(ctx context.Context, summary *entities.Summary) error {
	if err := requireVolume(summary.UID, summary.VolumeID); err != nil {
		return err
	}
	if err := validateStruct(summary); err != nil {
		return err
	}

	sctx, cancel := r.storeCtx(ctx)
	err := r.store.UpsertSummary(sctx, summary)
	cancel()
	if err != nil {
		return err
	}

	return r.syncMirror(ctx, summary)
}

// syncMirror publishes or withdraws summary after a committed local write.
func (r *AnnotationRepository) syncMirror(ctx context.Context, summary *entities.Summary) error {
	if r.mirror == nil {
		return nil
	}

	mctx, cancel := r.mirrorCtx(ctx)
	defer cancel()

	var err error
	if summary.IsPublic {
		err = r.mirror.Publish(mctx, summary.UID, summary.VolumeID, summary.OverallSummary)
	} else {
		err = r.mirror.Unpublish(mctx, summary.UID, summary.VolumeID)
	}
	if err != nil {
		r.logger.Warn("mirror update failed after local write",
			zap.String("uid", summary.UID),
			zap.String("volume_id", summary.VolumeID),
			zap.Bool("public", summary.IsPublic),
			zap.Error(err))
		return &apperrors.PartialWriteError{Err: err}
	}
	return nil
}

// ListMemos returns the reader's memos for a volume in insertion order.
func (r *AnnotationRepository) ListMemos(ctx context.Context, uid, volumeID string) *workerpool.Future[[]entities.HighlightMemo] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) ([]entities.HighlightMemo, error) {
		if err := requireVolume(uid, volumeID); err != nil {
			return nil, err
		}
		sctx, cancel := r.storeCtx(ctx)
		defer cancel()
		return r.store.ListMemos(sctx, uid, volumeID)
	})
}

// AddMemo stores a memo and resolves with its id.
func (r *AnnotationRepository) AddMemo(ctx context.Context, uid, volumeID string, page, line int, memo string) *workerpool.Future[int64] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) (int64, error) {
		m := &entities.HighlightMemo{
			UID:      uid,
			VolumeID: volumeID,
			Page:     page,
			Line:     line,
			Memo:     memo,
		}
		if err := validateStruct(m); err != nil {
			return 0, err
		}

		sctx, cancel := r.storeCtx(ctx)
		defer cancel()
		return r.store.InsertMemo(sctx, m)
	})
}

// DeleteMemo removes one memo of volumeID owned by uid. Resolves with
// ErrNotFound when nothing matched.
func (r *AnnotationRepository) DeleteMemo(ctx context.Context, uid, volumeID string, id int64) *workerpool.Future[struct{}] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) (struct{}, error) {
		if err := requireVolume(uid, volumeID); err != nil {
			return struct{}{}, err
		}

		sctx, cancel := r.storeCtx(ctx)
		n, err := r.store.DeleteMemo(sctx, &entities.HighlightMemo{ID: id, UID: uid, VolumeID: volumeID})
		cancel()
		if err != nil {
			return struct{}{}, err
		}
		if n == 0 {
			return struct{}{}, apperrors.ErrNotFound
		}
		return struct{}{}, nil
	})
}

// DeleteVolume removes every memo and the summary of a volume, then
// withdraws it from the mirror.
func (r *AnnotationRepository) DeleteVolume(ctx context.Context, uid, volumeID string) *workerpool.Future[struct{}] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) (struct{}, error) {
		if err := requireVolume(uid, volumeID); err != nil {
			return struct{}{}, err
		}

		sctx, cancel := r.storeCtx(ctx)
		defer cancel()
		if _, err := r.store.DeleteAllMemos(sctx, uid, volumeID); err != nil {
			return struct{}{}, err
		}
		if _, err := r.store.DeleteSummary(sctx, uid, volumeID); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, r.syncMirror(ctx, &entities.Summary{UID: uid, VolumeID: volumeID})
	})
}

// ResolveVolumeID maps a scanned ISBN to a volume id.
func (r *AnnotationRepository) ResolveVolumeID(ctx context.Context, identifier string) *workerpool.Future[string] {
	return workerpool.SubmitContext(ctx, r.pool, func(ctx context.Context) (string, error) {
		if r.resolver == nil {
			return "", apperrors.ErrNotFound
		}
		return r.resolver.ResolveVolumeID(ctx, identifier)
	})
}

// lookup never fails: errors degrade to an empty title and cover.
func (r *AnnotationRepository) lookup(ctx context.Context, volumeID string) volumes.Volume {
	if r.resolver == nil {
		return volumes.Volume{ID: volumeID}
	}
	vol, err := r.resolver.Lookup(ctx, volumeID)
	if err != nil {
		r.logger.Warn("volume lookup failed",
			zap.String("volume_id", volumeID),
			zap.Error(err))
		return volumes.Volume{ID: volumeID}
	}
	return *vol
}
