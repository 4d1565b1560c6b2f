// Package pricelist fetches per-batch rates for catalog items from a remote
// price list service.
package pricelist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/salesdesk/internal/form"
)

// ErrNotFound is returned when the price list does not know the item.
var ErrNotFound = errors.New("catalog item not found in price list")

// Client looks up rates over HTTP. The remote side serves
// GET {base}/api/catalog/{id}/rates.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a price list client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &Client{httpClient: restyClient}
}

type errorBody struct {
	Error string `json:"error"`
}

// Lookup returns the rates for ref.
func (c *Client) Lookup(ctx context.Context, ref string) (form.Rates, error) {
	var rates form.Rates
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&rates).
		SetError(apiErr).
		Get(fmt.Sprintf("/api/catalog/%s/rates", url.PathEscape(ref)))
	if err != nil {
		return form.Rates{}, fmt.Errorf("price list lookup %s: %w", ref, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return form.Rates{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case resp.StatusCode() >= http.StatusBadRequest:
		return form.Rates{}, fmt.Errorf("price list error: status=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}
	return rates, nil
}
