package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/form"
	"github.com/mamadbah2/salesdesk/internal/repository"
	"github.com/mamadbah2/salesdesk/internal/service/catalog"
	"github.com/mamadbah2/salesdesk/internal/service/directory"
	"github.com/mamadbah2/salesdesk/internal/service/sales"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		wantMsg string
	}{
		{name: "missing form", err: sales.ErrFormNotFound, want: http.StatusNotFound, wantMsg: "not found"},
		{name: "wrapped missing record", err: fmt.Errorf("get sale: %w", repository.ErrNotFound), want: http.StatusNotFound},
		{name: "row not found hides details", err: form.ErrRowNotFound, want: http.StatusUnprocessableEntity, wantMsg: actionFailed},
		{name: "read-only field", err: form.ErrReadOnlyField, want: http.StatusUnprocessableEntity, wantMsg: actionFailed},
		{name: "required field", err: &models.ValidationError{Err: form.ErrRequiredField, Details: []string{"client"}}, want: http.StatusUnprocessableEntity, wantMsg: "required field is empty: client"},
		{name: "sale rule", err: &models.ValidationError{Err: sales.ErrInvalidSale, Details: []string{"at least one line item is required"}}, want: http.StatusUnprocessableEntity},
		{name: "invalid bottle type", err: &models.ValidationError{Err: catalog.ErrInvalidItem, Details: []string{"label is required"}}, want: http.StatusBadRequest},
		{name: "lookup outage", err: fmt.Errorf("%w: %w", sales.ErrLookupFailed, errors.New("dial tcp")), want: http.StatusBadGateway, wantMsg: "catalog lookup failed"},
		{name: "unknown catalog item", err: fmt.Errorf("%w: ghost", sales.ErrUnknownCatalogItem), want: http.StatusUnprocessableEntity},
		{name: "name taken", err: fmt.Errorf("%w: Pune", directory.ErrNameTaken), want: http.StatusConflict},
		{name: "unexpected", err: errors.New("disk full"), want: http.StatusInternalServerError, wantMsg: "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := statusOf(tt.err)
			if got != tt.want {
				t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}
