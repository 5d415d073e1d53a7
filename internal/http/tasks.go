package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

const taskStatusTimeout = 5 * time.Second

// TasksController handles mirror reconciliation and task status endpoints.
type TasksController struct {
	queue ReconcileQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue ReconcileQueue) *TasksController {
	return &TasksController{queue: queue}
}

// Reconcile handles POST /api/mirror/reconcile
// Enqueues a repair of the caller's public mirror records.
func (tc *TasksController) Reconcile(c *gin.Context) {
	uid := GetUserID(c)

	taskID, err := tc.queue.EnqueueReconcile(c.Request.Context(), uid)
	if err != nil {
		respondInternalError(c, err, "enqueue reconcile")
		return
	}

	respondAccepted(c, "task enqueued", gin.H{
		"task_id": taskID,
		"type":    "reconcile_mirror",
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
