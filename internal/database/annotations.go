package database

import (
	"context"
	"errors"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/database/memos"
	"github.com/mrlokans/bookmemo/internal/database/summaries"
	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/metrics"
)

// AnnotationStore is the local store for summaries and highlight memos.
// It is safe for concurrent use.
type AnnotationStore struct {
	summaries *summaries.Repository
	memos     *memos.Repository
	metrics   *metrics.Collector
}

// NewAnnotationStore builds the store on an open database. collector may be nil.
func NewAnnotationStore(db *Database, collector *metrics.Collector) *AnnotationStore {
	return &AnnotationStore{
		summaries: summaries.NewRepository(db.DB),
		memos:     memos.NewRepository(db.DB),
		metrics:   collector,
	}
}

func (s *AnnotationStore) GetSummary(ctx context.Context, uid, volumeID string) (*entities.Summary, error) {
	summary, err := s.summaries.GetSummary(ctx, uid, volumeID)
	s.metrics.ObserveStore("get_summary", ignoreNotFound(err))
	return summary, err
}

func (s *AnnotationStore) UpsertSummary(ctx context.Context, summary *entities.Summary) error {
	err := s.summaries.UpsertSummary(ctx, summary)
	s.metrics.ObserveStore("upsert_summary", err)
	return err
}

func (s *AnnotationStore) DeleteSummary(ctx context.Context, uid, volumeID string) (int64, error) {
	n, err := s.summaries.DeleteSummary(ctx, uid, volumeID)
	s.metrics.ObserveStore("delete_summary", err)
	return n, err
}

func (s *AnnotationStore) ListSummaries(ctx context.Context, uid string) ([]entities.Summary, error) {
	list, err := s.summaries.ListSummaries(ctx, uid)
	s.metrics.ObserveStore("list_summaries", err)
	return list, err
}

func (s *AnnotationStore) ListUIDs(ctx context.Context) ([]string, error) {
	uids, err := s.summaries.ListUIDs(ctx)
	s.metrics.ObserveStore("list_uids", err)
	return uids, err
}

func (s *AnnotationStore) ListMemos(ctx context.Context, uid, volumeID string) ([]entities.HighlightMemo, error) {
	list, err := s.memos.ListMemos(ctx, uid, volumeID)
	s.metrics.ObserveStore("list_memos", err)
	return list, err
}

func (s *AnnotationStore) InsertMemo(ctx context.Context, memo *entities.HighlightMemo) (int64, error) {
	id, err := s.memos.InsertMemo(ctx, memo)
	s.metrics.ObserveStore("insert_memo", err)
	return id, err
}

func (s *AnnotationStore) DeleteMemo(ctx context.Context, memo *entities.HighlightMemo) (int64, error) {
	n, err := s.memos.DeleteMemo(ctx, memo)
	s.metrics.ObserveStore("delete_memo", err)
	return n, err
}

func (s *AnnotationStore) DeleteAllMemos(ctx context.Context, uid, volumeID string) (int64, error) {
	n, err := s.memos.DeleteAllMemos(ctx, uid, volumeID)
	s.metrics.ObserveStore("delete_all_memos", err)
	return n, err
}

// A missing row is an expected answer, not a store failure.
func ignoreNotFound(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}
