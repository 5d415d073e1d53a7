// Package memos provides database operations for the highlight_memo table.
package memos

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/entities"
)

// Repository handles all highlight memo database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new memos repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListMemos returns the memos for (uid, volumeID) in insertion order.
func (r *Repository) ListMemos(ctx context.Context, uid, volumeID string) ([]entities.HighlightMemo, error) {
	memos := []entities.HighlightMemo{}
	err := r.db.WithContext(ctx).
		Where("uid = ? AND volumeId = ?", uid, volumeID).
		Order("id ASC").
		Find(&memos).Error
	if err != nil {
		return nil, &apperrors.StoreError{Op: "list memos", Err: err}
	}
	return memos, nil
}

// InsertMemo stores memo and returns the id the store assigned. Any ID set
// by the caller is ignored.
func (r *Repository) InsertMemo(ctx context.Context, memo *entities.HighlightMemo) (int64, error) {
	memo.ID = 0
	if err := r.db.WithContext(ctx).Create(memo).Error; err != nil {
		return 0, &apperrors.StoreError{Op: "insert memo", Err: err}
	}
	return memo.ID, nil
}

// DeleteMemo removes the memo matching memo.ID owned by memo.UID. A non-empty
// memo.VolumeID further restricts the match to that volume.
func (r *Repository) DeleteMemo(ctx context.Context, memo *entities.HighlightMemo) (int64, error) {
	query := r.db.WithContext(ctx).Where("id = ? AND uid = ?", memo.ID, memo.UID)
	if memo.VolumeID != "" {
		query = query.Where("volumeId = ?", memo.VolumeID)
	}
	result := query.Delete(&entities.HighlightMemo{})
	if result.Error != nil {
		return 0, &apperrors.StoreError{Op: "delete memo", Err: result.Error}
	}
	return result.RowsAffected, nil
}

// DeleteAllMemos removes every memo for (uid, volumeID).
func (r *Repository) DeleteAllMemos(ctx context.Context, uid, volumeID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("uid = ? AND volumeId = ?", uid, volumeID).
		Delete(&entities.HighlightMemo{})
	if result.Error != nil {
		return 0, &apperrors.StoreError{Op: "delete all memos", Err: result.Error}
	}
	return result.RowsAffected, nil
}
