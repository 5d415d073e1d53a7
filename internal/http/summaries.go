package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookmemo/internal/entities"
)

// SummariesController serves summaries and highlight memos.
type SummariesController struct {
	annotations AnnotationService
}

func NewSummariesController(annotations AnnotationService) *SummariesController {
	return &SummariesController{annotations: annotations}
}

// SaveSummaryRequest is the body of PUT /api/summaries/:volumeId.
type SaveSummaryRequest struct {
	OverallSummary *string `json:"overallSummary"`
	IsPublic       bool    `json:"isPublic"`
}

// VisibilityRequest is the body of PUT /api/summaries/:volumeId/visibility.
type VisibilityRequest struct {
	IsPublic *bool `json:"isPublic" binding:"required"`
}

// AddMemoRequest is the body of POST /api/summaries/:volumeId/memos.
type AddMemoRequest struct {
	Page int    `json:"page"`
	Line int    `json:"line"`
	Memo string `json:"memo"`
}

func volumeParam(c *gin.Context) (string, bool) {
	volumeID := strings.TrimSpace(c.Param("volumeId"))
	if volumeID == "" {
		respondBadRequest(c, "volumeId is required")
		return "", false
	}
	return volumeID, true
}

// List handles GET /api/summaries
func (sc *SummariesController) List(c *gin.Context) {
	items, err := sc.annotations.GetAllSummaries(c.Request.Context(), GetUserID(c)).Await(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "summaries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": items})
}

// Get handles GET /api/summaries/:volumeId
func (sc *SummariesController) Get(c *gin.Context) {
	volumeID, ok := volumeParam(c)
	if !ok {
		return
	}

	detail, err := sc.annotations.GetDetail(c.Request.Context(), GetUserID(c), volumeID).Await(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "summary")
		return
	}
	if detail == nil {
		respondNotFound(c, "summary")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Save handles PUT /api/summaries/:volumeId
func (sc *SummariesController) Save(c *gin.Context) {
	volumeID, ok := volumeParam(c)
	if !ok {
		return
	}

	var req SaveSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	summary := entities.Summary{
		UID:            GetUserID(c),
		VolumeID:       volumeID,
		OverallSummary: req.OverallSummary,
		IsPublic:       req.IsPublic,
	}
	if _, err := sc.annotations.SaveSummary(c.Request.Context(), summary).Await(c.Request.Context()); err != nil {
		respondAppError(c, err, "summary")
		return
	}
	respondSuccess(c, "summary saved")
}

// SetVisibility handles PUT /api/summaries/:volumeId/visibility
func (sc *SummariesController) SetVisibility(c *gin.Context) {
	volumeID, ok := volumeParam(c)
	if !ok {
		return
	}

	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "isPublic is required")
		return
	}

	_, err := sc.annotations.SetPublicStatus(c.Request.Context(), GetUserID(c), volumeID, *req.IsPublic).Await(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "summary")
		return
	}
	respondSuccess(c, "visibility updated")
}

// Delete handles DELETE /api/summaries/:volumeId
// Removes the summary and every memo of the volume.
func (sc *SummariesController) Delete(c *gin.Context) {
	volumeID, ok := volumeParam(c)
	if !ok {
		return
	}

	if _, err := sc.annotations.DeleteVolume(c.Request.Context(), GetUserID(c), volumeID).Await(c.Request.Context()); err != nil {
		respondAppError(c, err, "summary")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMemos handles GET /api/summaries/:volumeId/memos
func (sc *SummariesController) ListMemos(c *gin.Context) {
	volumeID, ok := volumeParam(c)
	if !ok {
		return
	}

	memos, err := sc.annotations.ListMemos(c.Request.Context(), GetUserID(c), volumeID).Await(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "memos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"memos": memos})
}

// AddMemo handles POST /api/summaries/:volumeId/memos
func (sc *SummariesController) AddMemo(c *gin.Context) {
	volumeID, ok := volumeParam(c)
	if !ok {
		return
	}

	var req AddMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	id, err := sc.annotations.AddMemo(c.Request.Context(), GetUserID(c), volumeID, req.Page, req.Line, req.Memo).Await(c.Request.Context())
	if err != nil {
		respondAppError(c, err, "memo")
		return
	}
	respondCreated(c, gin.H{"id": id})
}

// DeleteMemo handles DELETE /api/summaries/:volumeId/memos/:id
func (sc *SummariesController) DeleteMemo(c *gin.Context) {
	volumeID, ok := volumeParam(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := sc.annotations.DeleteMemo(c.Request.Context(), GetUserID(c), volumeID, id).Await(c.Request.Context()); err != nil {
		respondAppError(c, err, "memo")
		return
	}
	c.Status(http.StatusNoContent)
}
