package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfnunez/avisia-utm-builder/internal/form"
	"github.com/mfnunez/avisia-utm-builder/internal/middleware"
	"github.com/mfnunez/avisia-utm-builder/internal/models"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
	"go.uber.org/zap"
)

// FormHandler exposes the form view-model: GET returns the current state,
// POST /events applies one discrete transition and returns the next state.
type FormHandler struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
}

func NewFormHandler(sessions repository.SessionRepository, logger *zap.Logger) *FormHandler {
	return &FormHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// FormView is what the UI renders: the state itself plus everything derived
// from it, so the client holds no logic of its own.
type FormView struct {
	State       form.State        `json:"state"`
	CanGenerate bool              `json:"can_generate"`
	PreviewURL  string            `json:"preview_url,omitempty"`
	Normalized  map[string]string `json:"normalized"`
	Selected    []string          `json:"selected"`
}

func newFormView(state form.State) FormView {
	view := FormView{
		State:       state,
		CanGenerate: state.CanGenerate(),
		Normalized:  normalizedValues(state.Source, state.Medium, state.Campaign, state.Content, state.Term),
		Selected:    state.SelectedURLs(),
	}
	if view.CanGenerate {
		view.PreviewURL = state.PreviewURL()
	}
	return view
}

func (h *FormHandler) GetForm(c *gin.Context) {
	sessionID, _ := middleware.SessionIDFromContext(c)

	state, err := h.sessions.GetFormState(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load form state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load form state",
		})
		return
	}

	c.JSON(http.StatusOK, newFormView(state))
}

// ApplyEvent reduces one event into the session's form state. On store
// failure the previous state stands untouched.
func (h *FormHandler) ApplyEvent(c *gin.Context) {
	var event form.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	sessionID, _ := middleware.SessionIDFromContext(c)
	ctx := c.Request.Context()

	state, err := h.sessions.GetFormState(ctx, sessionID)
	if err != nil {
		h.logger.Error("Failed to load form state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load form state",
		})
		return
	}

	next := form.Reduce(state, event)

	if err := h.sessions.SaveFormState(ctx, sessionID, next); err != nil {
		h.logger.Error("Failed to save form state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to save form state, previous state kept",
		})
		return
	}

	c.JSON(http.StatusOK, newFormView(next))
}

// Presets returns the quick-pick buttons and worked examples for the form.
func (h *FormHandler) Presets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources":  models.SourcePresets,
		"mediums":  models.MediumPresets,
		"examples": models.Examples,
	})
}
