package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks_Reconcile(t *testing.T) {
	queue := &fakeQueue{}
	router := NewRouter(RouterConfig{Reconcile: queue})

	w := doRequest(t, router, http.MethodPost, "/api/mirror/reconcile", "u1", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "task-u1", resp.Data["task_id"])
	assert.Equal(t, []string{"u1"}, queue.enqueued)
}

func TestTasks_ReconcileEnqueueFailure(t *testing.T) {
	router := NewRouter(RouterConfig{Reconcile: &fakeQueue{err: errors.New("queue closed")}})

	w := doRequest(t, router, http.MethodPost, "/api/mirror/reconcile", "u1", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTasks_GetTaskStatus(t *testing.T) {
	queue := &fakeQueue{statuses: map[string]backlite.TaskStatus{
		"t1": backlite.TaskStatusSuccess,
	}}
	router := NewRouter(RouterConfig{Reconcile: queue})

	w := doRequest(t, router, http.MethodGet, "/api/tasks/t1", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"t1","status":"success"}`, w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/api/tasks/unknown", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}
