package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/form"
	"github.com/mamadbah2/salesdesk/internal/repository"
	"github.com/mamadbah2/salesdesk/internal/service/catalog"
	"github.com/mamadbah2/salesdesk/internal/service/directory"
	"github.com/mamadbah2/salesdesk/internal/service/export"
	"github.com/mamadbah2/salesdesk/internal/service/notify"
	"github.com/mamadbah2/salesdesk/internal/service/sales"
)

const actionFailed = "could not complete action"

// statusOf maps a service error to its HTTP status and client message.
func statusOf(err error) (int, string) {
	var inputErr *models.ValidationError
	switch {
	case errors.Is(err, sales.ErrUnknownCatalogItem), errors.Is(err, directory.ErrUnknownLocation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, sales.ErrLookupFailed):
		return http.StatusBadGateway, sales.ErrLookupFailed.Error()
	case errors.Is(err, sales.ErrFormNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, form.ErrRowNotFound), errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrReadOnlyField), errors.Is(err, form.ErrUnknownMode),
		errors.Is(err, form.ErrUnknownEvent):
		return http.StatusUnprocessableEntity, actionFailed
	case errors.Is(err, directory.ErrNameRequired), errors.Is(err, catalog.ErrInvalidItem):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, directory.ErrNameTaken), errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, err.Error()
	case errors.As(err, &inputErr):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, notify.ErrDisabled), errors.Is(err, export.ErrSheetsDisabled):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
