package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/service/catalog"
)

// RateInvalidator drops cached rates after a catalog change.
type RateInvalidator interface {
	ForgetRates(ref string)
}

// CatalogHandler manages bottle types.
type CatalogHandler struct {
	svc    *catalog.Service
	rates  RateInvalidator
	logger *zap.Logger
}

// NewCatalogHandler constructs the HTTP handler adapter. rates may be nil.
func NewCatalogHandler(svc *catalog.Service, rates RateInvalidator, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, rates: rates, logger: logger}
}

type catalogItemResponse struct {
	models.CatalogItem
	CostPerBatch string `json:"cp_per_batch"`
	SellPerBatch string `json:"sp_per_batch"`
}

func itemResponse(item models.CatalogItem) catalogItemResponse {
	return catalogItemResponse{
		CatalogItem:  item,
		CostPerBatch: item.CostPerBatch().StringFixed(2),
		SellPerBatch: item.SellPerBatch().StringFixed(2),
	}
}

// List returns bottle types, filtered by ?q= on the label.
func (h *CatalogHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]catalogItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemResponse(item))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, itemResponse(item))
}

// Rates returns the per-batch rates an entry form seeds from.
func (h *CatalogHandler) Rates(c *gin.Context) {
	rates, err := h.svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var item models.CatalogItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), item)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, itemResponse(created))
}

func (h *CatalogHandler) Update(c *gin.Context) {
	var item models.CatalogItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.forget(updated.ID)
	c.JSON(http.StatusOK, itemResponse(updated))
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.forget(id)
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) forget(id string) {
	if h.rates != nil {
		h.rates.ForgetRates(id)
	}
}
