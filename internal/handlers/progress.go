package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/modulearn/backend/internal/platform/apierr"
	"github.com/modulearn/backend/internal/platform/logger"
	"github.com/modulearn/backend/internal/requestdata"
	"github.com/modulearn/backend/internal/services"
)

type ProgressHandler struct {
	log     *logger.Logger
	cascade services.CascadeCoordinator
}

func NewProgressHandler(baseLog *logger.Logger, cascade services.CascadeCoordinator) *ProgressHandler {
	return &ProgressHandler{
		log:     baseLog.With("handler", "ProgressHandler"),
		cascade: cascade,
	}
}

func (h *ProgressHandler) StartItem(c *gin.Context) {
	rd, itemID, ok := h.itemRequest(c)
	if !ok {
		return
	}
	row, err := h.cascade.StartItem(c.Request.Context(), rd.UserID, itemID)
	if err != nil {
		h.log.Error("StartItem failed", "error", err, "item_id", itemID, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

type completeItemRequest struct {
	Score            *float64       `json:"score"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	Responses        map[string]any `json:"responses"`
	Metadata         map[string]any `json:"metadata"`
}

// CompleteItem marks the item completed and runs the module and course
// recomputes in the same transaction, so the response carries all three
// post-cascade rows.
func (h *ProgressHandler) CompleteItem(c *gin.Context) {
	rd, itemID, ok := h.itemRequest(c)
	if !ok {
		return
	}
	var req completeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.cascade.CompleteItem(c.Request.Context(), rd.UserID, itemID, services.CompletionData{
		Score:            req.Score,
		TimeSpentSeconds: req.TimeSpentSeconds,
		Responses:        req.Responses,
		Metadata:         req.Metadata,
	})
	if err != nil {
		h.log.Error("CompleteItem failed", "error", err, "item_id", itemID, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

type partialProgressRequest struct {
	ProgressPercentage float64 `json:"progress_percentage"`
	TimeDeltaSeconds   int     `json:"time_delta_seconds"`
}

func (h *ProgressHandler) RecordPartialProgress(c *gin.Context) {
	rd, itemID, ok := h.itemRequest(c)
	if !ok {
		return
	}
	var req partialProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.cascade.UpdateItemPartialProgress(c.Request.Context(), rd.UserID, itemID, req.ProgressPercentage, req.TimeDeltaSeconds)
	if err != nil {
		h.log.Error("RecordPartialProgress failed", "error", err, "item_id", itemID, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *ProgressHandler) itemRequest(c *gin.Context) (*requestdata.RequestData, uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return nil, uuid.Nil, false
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondServiceError(c, apierr.New(http.StatusBadRequest, "invalid_item_id", err))
		return nil, uuid.Nil, false
	}
	return rd, itemID, true
}
