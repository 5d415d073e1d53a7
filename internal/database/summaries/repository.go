// Package summaries provides database operations for the summary table.
//
// # Usage
//
//	repo := summaries.NewRepository(db)
//	err := repo.UpsertSummary(ctx, &entities.Summary{UID: "u1", VolumeID: "v1"})
//	summary, err := repo.GetSummary(ctx, "u1", "v1")
package summaries

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/entities"
)

// Repository handles all summary database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new summaries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSummary returns the summary for (uid, volumeID) or apperrors.ErrNotFound.
func (r *Repository) GetSummary(ctx context.Context, uid, volumeID string) (*entities.Summary, error) {
	var summary entities.Summary
	err := r.db.WithContext(ctx).
		Where("uid = ? AND volumeId = ?", uid, volumeID).
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.StoreError{Op: "get summary", Err: err}
	}
	return &summary, nil
}

// UpsertSummary inserts the summary or replaces the existing row with the
// same key in one statement.
func (r *Repository) UpsertSummary(ctx context.Context, summary *entities.Summary) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}, {Name: "volumeId"}},
			DoUpdates: clause.AssignmentColumns([]string{"overallSummary", "isPublic"}),
		}).
		Create(summary).Error
	if err != nil {
		return &apperrors.StoreError{Op: "upsert summary", Err: err}
	}
	return nil
}

// DeleteSummary removes the summary and returns the number of rows deleted.
func (r *Repository) DeleteSummary(ctx context.Context, uid, volumeID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("uid = ? AND volumeId = ?", uid, volumeID).
		Delete(&entities.Summary{})
	if result.Error != nil {
		return 0, &apperrors.StoreError{Op: "delete summary", Err: result.Error}
	}
	return result.RowsAffected, nil
}

// ListSummaries returns every summary owned by uid, ordered by volume id.
func (r *Repository) ListSummaries(ctx context.Context, uid string) ([]entities.Summary, error) {
	var list []entities.Summary
	err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("volumeId ASC").
		Find(&list).Error
	if err != nil {
		return nil, &apperrors.StoreError{Op: "list summaries", Err: err}
	}
	return list, nil
}

// ListUIDs returns every distinct uid that owns at least one summary.
func (r *Repository) ListUIDs(ctx context.Context) ([]string, error) {
	var uids []string
	err := r.db.WithContext(ctx).
		Model(&entities.Summary{}).
		Distinct("uid").
		Order("uid ASC").
		Pluck("uid", &uids).Error
	if err != nil {
		return nil, &apperrors.StoreError{Op: "list uids", Err: err}
	}
	return uids, nil
}
