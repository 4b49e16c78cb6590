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

type CourseHandler struct {
	log               *logger.Logger
	authoringService  services.AuthoringService
	viewAssembler     services.ViewAssembler
	enrollmentService services.EnrollmentService
	cascade           services.CascadeCoordinator
}

func NewCourseHandler(
	baseLog *logger.Logger,
	authoringService services.AuthoringService,
	viewAssembler services.ViewAssembler,
	enrollmentService services.EnrollmentService,
	cascade services.CascadeCoordinator,
) *CourseHandler {
	return &CourseHandler{
		log:               baseLog.With("handler", "CourseHandler"),
		authoringService:  authoringService,
		viewAssembler:     viewAssembler,
		enrollmentService: enrollmentService,
		cascade:           cascade,
	}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	courses, err := h.authoringService.ListCourses(c.Request.Context(), rd.TenantID)
	if err != nil {
		h.log.Error("ListCourses failed", "error", err, "tenant_id", rd.TenantID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

// GetCourseView returns the fully assembled per-user view: resolved content,
// progress at all three levels, locking and the active item.
func (h *CourseHandler) GetCourseView(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondServiceError(c, apierr.New(http.StatusBadRequest, "invalid_course_id", err))
		return
	}
	view, err := h.viewAssembler.AssembleCourseView(c.Request.Context(), rd.UserID, rd.TenantID, courseID)
	if err != nil {
		h.log.Error("AssembleCourseView failed", "error", err, "course_id", courseID, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondServiceError(c, apierr.New(http.StatusBadRequest, "invalid_course_id", err))
		return
	}
	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), rd.UserID, rd.TenantID, courseID)
	if err != nil {
		h.log.Error("Enroll failed", "error", err, "course_id", courseID, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, enrollment)
}

// ResetProgress wipes the caller's progress for the course at every level.
func (h *CourseHandler) ResetProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondServiceError(c, apierr.New(http.StatusBadRequest, "invalid_course_id", err))
		return
	}
	if err := h.cascade.ResetCourseProgress(c.Request.Context(), rd.UserID, courseID); err != nil {
		h.log.Error("ResetProgress failed", "error", err, "course_id", courseID, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "reset"})
}
