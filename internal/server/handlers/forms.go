package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/form"
	"github.com/mamadbah2/salesdesk/internal/service/sales"
)

// FormHandler serves the server-held entry forms.
type FormHandler struct {
	svc    *sales.Service
	logger *zap.Logger
}

// NewFormHandler constructs the HTTP handler adapter.
func NewFormHandler(svc *sales.Service, logger *zap.Logger) *FormHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormHandler{svc: svc, logger: logger}
}

type formResponse struct {
	ID   string        `json:"id"`
	Form form.Snapshot `json:"form"`
}

// Open starts a blank form.
func (h *FormHandler) Open(c *gin.Context) {
	id, snap := h.svc.OpenForm()
	c.JSON(http.StatusCreated, formResponse{ID: id, Form: snap})
}

// OpenEdit starts a form prefilled from a stored sale.
func (h *FormHandler) OpenEdit(c *gin.Context) {
	id, snap, err := h.svc.OpenEditForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, formResponse{ID: id, Form: snap})
}

// Get renders the current form state.
func (h *FormHandler) Get(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, formResponse{ID: c.Param("id"), Form: snap})
}

// Event applies one input event.
func (h *FormHandler) Event(c *gin.Context) {
	var ev form.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	snap, err := h.svc.HandleEvent(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, formResponse{ID: c.Param("id"), Form: snap})
}

// Submit stores the form's sale and returns it with the reset form.
func (h *FormHandler) Submit(c *gin.Context) {
	id := c.Param("id")
	sale, err := h.svc.SubmitForm(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	snap, err := h.svc.Snapshot(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sale": sale, "id": id, "form": snap})
}

// Close discards a form.
func (h *FormHandler) Close(c *gin.Context) {
	if err := h.svc.CloseForm(c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
