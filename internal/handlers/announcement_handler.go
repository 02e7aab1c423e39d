package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/middleware"
	"hrms-platform/internal/models"
	"hrms-platform/internal/repository"
	"hrms-platform/internal/response"
)

// AnnouncementHandler handles HTTP requests for announcements
type AnnouncementHandler struct {
	announcements repository.AnnouncementRepositoryInterface
	logger        *logrus.Entry
}

// NewAnnouncementHandler creates a new AnnouncementHandler
func NewAnnouncementHandler(announcements repository.AnnouncementRepositoryInterface, logger *logrus.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcements: announcements,
		logger:        logger.WithField("component", "announcement_handler"),
	}
}

// AnnouncementRequest is the payload for creating or updating an announcement
type AnnouncementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// Create publishes a new announcement
func (h *AnnouncementHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid announcement payload")
		return
	}

	announcement := &models.Announcement{
		Title:     req.Title,
		Body:      req.Body,
		CreatedBy: principal.UserID,
	}
	if err := h.announcements.Create(c.Request.Context(), announcement); err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetAuditEntityID(c, announcement.ID.String())
	response.Success(c, http.StatusCreated, announcement)
}

// Get retrieves a single announcement
func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid announcement id")
		return
	}

	announcement, err := h.announcements.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "announcement not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, announcement)
}

// List retrieves announcements, paginated, newest first
func (h *AnnouncementHandler) List(c *gin.Context) {
	page, pageSize, offset := response.Pagination(c)

	announcements, total, err := h.announcements.List(c.Request.Context(), pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, announcements, len(announcements), total, page, pageSize)
}

// Update replaces an announcement's title and body
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid announcement id")
		return
	}

	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid announcement payload")
		return
	}

	announcement, err := h.announcements.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "announcement not found")
			return
		}
		_ = c.Error(err)
		return
	}

	announcement.Title = req.Title
	announcement.Body = req.Body
	if err := h.announcements.Update(c.Request.Context(), announcement); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, announcement)
}

// Delete removes an announcement
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid announcement id")
		return
	}

	if err := h.announcements.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "announcement not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
