package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfnunez/avisia-utm-builder/internal/form"
	"github.com/mfnunez/avisia-utm-builder/internal/middleware"
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
	"github.com/mfnunez/avisia-utm-builder/internal/service"
	"github.com/mfnunez/avisia-utm-builder/internal/utm"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	service  service.HistoryService
	sessions repository.SessionRepository
	logger   *zap.Logger
}

func NewCampaignHandler(service service.HistoryService, sessions repository.SessionRepository, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PreviewRequest carries the raw form values; nothing is required because
// previewing partial input is fine.
type PreviewRequest struct {
	BaseURL  string `json:"base_url"`
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	Content  string `json:"content"`
	Term     string `json:"term"`
}

type PreviewResponse struct {
	FinalURL   string            `json:"final_url"`
	Normalized map[string]string `json:"normalized"`
}

// PreviewLink composes the tracking URL without saving anything.
func (h *CampaignHandler) PreviewLink(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{
		FinalURL:   utm.Compose(req.BaseURL, req.Source, req.Medium, req.Campaign, req.Content, req.Term),
		Normalized: normalizedValues(req.Source, req.Medium, req.Campaign, req.Content, req.Term),
	})
}

// SaveLink appends one Campaign Record to the history store.
func (h *CampaignHandler) SaveLink(c *gin.Context) {
	var input models.SaveLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("Invalid save request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	user, _ := middleware.UserFromContext(c)

	record, err := h.service.Save(c.Request.Context(), &input, user.Email)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "missing_fields",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("Failed to save campaign record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "store_error",
			Message: "Failed to save the link, nothing was written",
		})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListLinks returns the filtered history, newest first.
func (h *CampaignHandler) ListLinks(c *gin.Context) {
	filter := filterFromQuery(c)

	records, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to query history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "store_error",
			Message: "Failed to load history",
		})
		return
	}

	if records == nil {
		records = []models.CampaignRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// FilterChoices feeds the history filter dropdowns. Always 200: store
// failures degrade to empty sets inside the service.
func (h *CampaignHandler) FilterChoices(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.FilterChoices(c.Request.Context()))
}

// ExportLinks streams the filtered history as a CSV attachment.
func (h *CampaignHandler) ExportLinks(c *gin.Context) {
	filter := filterFromQuery(c)

	data, err := h.service.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to export history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "store_error",
			Message: "Failed to export history",
		})
		return
	}

	filename := "utm-links-" + time.Now().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

type DeleteLinksRequest struct {
	FinalURLs []string `json:"final_urls" binding:"required"`
}

// DeleteLinks bulk-deletes records by final_url. The session's history
// selection is cleared only when the delete succeeded.
func (h *CampaignHandler) DeleteLinks(c *gin.Context) {
	var req DeleteLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.FinalURLs); err != nil {
		h.logger.Error("Failed to delete campaign records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "store_error",
			Message: "Failed to delete the selected links, selection kept",
		})
		return
	}

	h.clearSelection(c)

	// no deleted count: final_url is not unique, so the request's URL count
	// says nothing about the rows removed
	c.JSON(http.StatusOK, gin.H{
		"message": "Selected links deleted",
	})
}

func (h *CampaignHandler) clearSelection(c *gin.Context) {
	sessionID, ok := middleware.SessionIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	state, err := h.sessions.GetFormState(ctx, sessionID)
	if err != nil {
		h.logger.Warn("Failed to load form state after delete", zap.Error(err))
		return
	}
	state = form.Reduce(state, form.Event{Type: form.EventClearSelection})
	if err := h.sessions.SaveFormState(ctx, sessionID, state); err != nil {
		h.logger.Warn("Failed to clear selection after delete", zap.Error(err))
	}
}

func filterFromQuery(c *gin.Context) models.QueryFilter {
	filter := models.QueryFilter{
		Source:   c.Query("source"),
		Medium:   c.Query("medium"),
		Campaign: c.Query("campaign"),
	}
	if l := c.Query("limit"); l != "" {
		if limit, err := strconv.Atoi(l); err == nil {
			filter.Limit = limit
		}
	}
	return filter
}

func normalizedValues(source, medium, campaign, content, term string) map[string]string {
	normalized := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			normalized[key] = utm.Normalize(value)
		}
	}
	set("utm_source", source)
	set("utm_medium", medium)
	set("utm_campaign", campaign)
	set("utm_content", content)
	set("utm_term", term)
	return normalized
}
