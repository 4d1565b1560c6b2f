package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/service/directory"
)

// DirectoryHandler serves clients, lead locations and leads.
type DirectoryHandler struct {
	svc    *directory.Service
	logger *zap.Logger
}

// NewDirectoryHandler constructs the HTTP handler adapter.
func NewDirectoryHandler(svc *directory.Service, logger *zap.Logger) *DirectoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryHandler{svc: svc, logger: logger}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *DirectoryHandler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *DirectoryHandler) GetClient(c *gin.Context) {
	client, err := h.svc.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *DirectoryHandler) CreateClient(c *gin.Context) {
	h.saveClient(c, "", http.StatusCreated)
}

func (h *DirectoryHandler) UpdateClient(c *gin.Context) {
	h.saveClient(c, c.Param("id"), http.StatusOK)
}

func (h *DirectoryHandler) saveClient(c *gin.Context, id string, status int) {
	var client models.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	saved, err := h.svc.SaveClient(c.Request.Context(), id, client)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, saved)
}

func (h *DirectoryHandler) DeleteClient(c *gin.Context) {
	if err := h.svc.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DirectoryHandler) ListLocations(c *gin.Context) {
	locations, err := h.svc.ListLocations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func (h *DirectoryHandler) CreateLocation(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	loc, err := h.svc.CreateLocation(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *DirectoryHandler) UpdateLocation(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	loc, err := h.svc.RenameLocation(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// DeleteLocation removes the location together with its leads.
func (h *DirectoryHandler) DeleteLocation(c *gin.Context) {
	if err := h.svc.DeleteLocation(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LocationEvents streams location changes as server-sent events until the
// client disconnects.
func (h *DirectoryHandler) LocationEvents(c *gin.Context) {
	events, cancel := h.svc.LocationEvents().Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("location", ev)
			c.Writer.Flush()
		}
	}
}

// ListLeads filters by ?location_id= and a comma-separated ?deal_status=.
func (h *DirectoryHandler) ListLeads(c *gin.Context) {
	filter := models.LeadFilter{
		LocationID:   c.Query("location_id"),
		DealStatuses: directory.ParseDealStatuses(c.Query("deal_status")),
	}
	leads, err := h.svc.ListLeads(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (h *DirectoryHandler) DealChoices(c *gin.Context) {
	c.JSON(http.StatusOK, models.DealChoices)
}

func (h *DirectoryHandler) CreateLead(c *gin.Context) {
	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	created, err := h.svc.CreateLead(c.Request.Context(), lead)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateLead applies only the fields present in the body.
func (h *DirectoryHandler) UpdateLead(c *gin.Context) {
	var patch models.LeadPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	updated, err := h.svc.UpdateLead(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *DirectoryHandler) DeleteLead(c *gin.Context) {
	if err := h.svc.DeleteLead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
