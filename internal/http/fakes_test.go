package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookmemo/internal/aggregator"
	"github.com/mrlokans/bookmemo/internal/apperrors"
	"github.com/mrlokans/bookmemo/internal/entities"
	"github.com/mrlokans/bookmemo/internal/recommend"
	"github.com/mrlokans/bookmemo/internal/repository"
	"github.com/mrlokans/bookmemo/internal/workerpool"
)

// fakeAnnotations keeps summaries and memos in memory, keyed by uid.
type fakeAnnotations struct {
	mu        sync.Mutex
	summaries map[string]map[string]entities.Summary
	memos     map[int64]entities.HighlightMemo
	nextID    int64
	resolved  map[string]string

	saveErr error
}

func newFakeAnnotations() *fakeAnnotations {
	return &fakeAnnotations{
		summaries: make(map[string]map[string]entities.Summary),
		memos:     make(map[int64]entities.HighlightMemo),
		resolved:  make(map[string]string),
	}
}

func (f *fakeAnnotations) GetAllSummaries(_ context.Context, uid string) *workerpool.Future[[]repository.SummaryItem] {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := []repository.SummaryItem{}
	for _, s := range f.summaries[uid] {
		items = append(items, repository.SummaryItem{VolumeID: s.VolumeID, IsPublic: s.IsPublic})
	}
	return workerpool.Completed(items, nil)
}

func (f *fakeAnnotations) GetDetail(_ context.Context, uid, volumeID string) *workerpool.Future[*repository.Detail] {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.summaries[uid][volumeID]
	if !ok {
		return workerpool.Completed[*repository.Detail](nil, nil)
	}
	return workerpool.Completed(&repository.Detail{
		VolumeID:       s.VolumeID,
		OverallSummary: s.OverallSummary,
		IsPublic:       s.IsPublic,
		Status:         s.Status(),
	}, nil)
}

func (f *fakeAnnotations) SaveSummary(_ context.Context, summary entities.Summary) *workerpool.Future[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return workerpool.Completed(struct{}{}, f.saveErr)
	}
	if f.summaries[summary.UID] == nil {
		f.summaries[summary.UID] = make(map[string]entities.Summary)
	}
	f.summaries[summary.UID][summary.VolumeID] = summary
	return workerpool.Completed(struct{}{}, nil)
}

func (f *fakeAnnotations) SetPublicStatus(_ context.Context, uid, volumeID string, isPublic bool) *workerpool.Future[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.summaries[uid][volumeID]
	if !ok {
		return workerpool.Completed(struct{}{}, apperrors.ErrNotFound)
	}
	s.IsPublic = isPublic
	f.summaries[uid][volumeID] = s
	return workerpool.Completed(struct{}{}, nil)
}

func (f *fakeAnnotations) DeleteVolume(_ context.Context, uid, volumeID string) *workerpool.Future[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.summaries[uid], volumeID)
	for id, m := range f.memos {
		if m.UID == uid && m.VolumeID == volumeID {
			delete(f.memos, id)
		}
	}
	return workerpool.Completed(struct{}{}, nil)
}

func (f *fakeAnnotations) ListMemos(_ context.Context, uid, volumeID string) *workerpool.Future[[]entities.HighlightMemo] {
	f.mu.Lock()
	defer f.mu.Unlock()

	memos := []entities.HighlightMemo{}
	for _, m := range f.memos {
		if m.UID == uid && m.VolumeID == volumeID {
			memos = append(memos, m)
		}
	}
	return workerpool.Completed(memos, nil)
}

func (f *fakeAnnotations) AddMemo(_ context.Context, uid, volumeID string, page, line int, memo string) *workerpool.Future[int64] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if memo == "" {
		return workerpool.Completed(int64(0), error(&apperrors.ValidationError{Field: "memo", Reason: "required"}))
	}
	f.nextID++
	f.memos[f.nextID] = entities.HighlightMemo{ID: f.nextID, UID: uid, VolumeID: volumeID, Page: page, Line: line, Memo: memo}
	return workerpool.Completed(f.nextID, nil)
}

func (f *fakeAnnotations) DeleteMemo(_ context.Context, uid, volumeID string, id int64) *workerpool.Future[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.memos[id]
	if !ok || m.UID != uid || m.VolumeID != volumeID {
		return workerpool.Completed(struct{}{}, apperrors.ErrNotFound)
	}
	delete(f.memos, id)
	return workerpool.Completed(struct{}{}, nil)
}

func (f *fakeAnnotations) ResolveVolumeID(_ context.Context, identifier string) *workerpool.Future[string] {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.resolved[identifier]
	if !ok {
		return workerpool.Completed("", apperrors.ErrNotFound)
	}
	return workerpool.Completed(id, nil)
}

type fakeBooks struct {
	result aggregator.Result
	err    error
	query  string
}

func (f *fakeBooks) Suggestions(_ context.Context, query string) *workerpool.Future[aggregator.Result] {
	f.query = query
	return workerpool.Completed(f.result, f.err)
}

func (f *fakeBooks) Search(_ context.Context, query string) *workerpool.Future[aggregator.Result] {
	f.query = query
	return workerpool.Completed(f.result, f.err)
}

func (f *fakeBooks) Ranking(context.Context) *workerpool.Future[aggregator.Result] {
	return workerpool.Completed(f.result, f.err)
}

type fakeRecommender struct {
	rec recommend.Recommendations
	err error
}

func (f *fakeRecommender) Recommend(context.Context, string) *workerpool.Future[recommend.Recommendations] {
	return workerpool.Completed(f.rec, f.err)
}

type fakeGenres struct {
	mu     sync.Mutex
	genres map[string][]string
	err    error
}

func (f *fakeGenres) FavoriteGenres(_ context.Context, uid string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if g, ok := f.genres[uid]; ok {
		return g, nil
	}
	return []string{}, nil
}

func (f *fakeGenres) SetFavoriteGenres(_ context.Context, uid string, genres []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if f.genres == nil {
		f.genres = make(map[string][]string)
	}
	f.genres[uid] = genres
	return nil
}

type fakeQueue struct {
	enqueued []string
	statuses map[string]backlite.TaskStatus
	err      error
}

func (f *fakeQueue) EnqueueReconcile(_ context.Context, uid string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, uid)
	return "task-" + uid, nil
}

func (f *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	if status, ok := f.statuses[taskID]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}

// doRequest sends a request as uid (empty for anonymous) and returns the recorder.
func doRequest(t *testing.T, handler http.Handler, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set(HeaderUserID, uid)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
