package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/entities"
)

// SummarySource lists local summaries for reconciliation.
type SummarySource interface {
	ListSummaries(ctx context.Context, uid string) ([]entities.Summary, error)
	ListUIDs(ctx context.Context) ([]string, error)
}

// Publisher is the mirror side of reconciliation.
type Publisher interface {
	Publish(ctx context.Context, uid, volumeID string, overallSummary *string) error
	Unpublish(ctx context.Context, uid, volumeID string) error
}

// ReconcileResult counts what one reconciliation did.
type ReconcileResult struct {
	Published   int `json:"published"`
	Unpublished int `json:"unpublished"`
	Failed      int `json:"failed"`
}

// Reconciler re-applies local visibility to the mirror. It repairs records
// left stale by a failed mirror write.
type Reconciler struct {
	store  SummarySource
	mirror Publisher
	logger *zap.Logger
}

func NewReconciler(store SummarySource, mirror Publisher, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, mirror: mirror, logger: logger}
}

// ReconcileUser publishes every public summary of uid and withdraws every
// private one. It continues past individual failures and returns them joined.
func (r *Reconciler) ReconcileUser(ctx context.Context, uid string) (ReconcileResult, error) {
	var result ReconcileResult

	summaries, err := r.store.ListSummaries(ctx, uid)
	if err != nil {
		return result, fmt.Errorf("list summaries for %s: %w", uid, err)
	}

	var errs []error
	for _, s := range summaries {
		var err error
		if s.IsPublic {
			err = r.mirror.Publish(ctx, s.UID, s.VolumeID, s.OverallSummary)
		} else {
			err = r.mirror.Unpublish(ctx, s.UID, s.VolumeID)
		}

		switch {
		case err != nil:
			result.Failed++
			errs = append(errs, fmt.Errorf("%s/%s: %w", s.UID, s.VolumeID, err))
		case s.IsPublic:
			result.Published++
		default:
			result.Unpublished++
		}
	}

	r.logger.Info("mirror reconciled",
		zap.String("uid", uid),
		zap.Int("published", result.Published),
		zap.Int("unpublished", result.Unpublished),
		zap.Int("failed", result.Failed))

	return result, errors.Join(errs...)
}

// ReconcileMirrorTask reconciles one reader's summaries.
type ReconcileMirrorTask struct {
	UID string `json:"uid"`
}

// Config returns the queue configuration for per-reader reconciliation.
func (t ReconcileMirrorTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_mirror",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileMirrorProcessor returns an error when any record failed so that
// backlite retries the whole reader.
func ReconcileMirrorProcessor(reconciler *Reconciler) backlite.QueueProcessor[ReconcileMirrorTask] {
	return func(ctx context.Context, task ReconcileMirrorTask) error {
		if reconciler == nil {
			return fmt.Errorf("reconciler not configured")
		}
		if task.UID == "" {
			return fmt.Errorf("reconcile task without uid")
		}
		_, err := reconciler.ReconcileUser(ctx, task.UID)
		return err
	}
}

func NewReconcileMirrorQueue(reconciler *Reconciler) backlite.Queue {
	return backlite.NewQueue(ReconcileMirrorProcessor(reconciler))
}

// ReconcileAllTask fans out one ReconcileMirrorTask per reader.
type ReconcileAllTask struct{}

func (t ReconcileAllTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_all",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileAllProcessor enqueues per-reader tasks on client.
func ReconcileAllProcessor(store SummarySource, client *Client, logger *zap.Logger) backlite.QueueProcessor[ReconcileAllTask] {
	return func(ctx context.Context, _ ReconcileAllTask) error {
		uids, err := store.ListUIDs(ctx)
		if err != nil {
			return fmt.Errorf("list readers: %w", err)
		}
		if len(uids) == 0 {
			return nil
		}

		tasks := make([]backlite.Task, 0, len(uids))
		for _, uid := range uids {
			tasks = append(tasks, ReconcileMirrorTask{UID: uid})
		}
		if _, err := client.Add(tasks...).Ctx(ctx).Save(); err != nil {
			return fmt.Errorf("enqueue reconcile tasks: %w", err)
		}

		logger.Info("reconcile scheduled", zap.Int("readers", len(uids)))
		return nil
	}
}

func NewReconcileAllQueue(store SummarySource, client *Client, logger *zap.Logger) backlite.Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return backlite.NewQueue(ReconcileAllProcessor(store, client, logger))
}
