// Package catalog manages the bottle types sold in fixed batches and serves
// their per-batch rates to entry forms.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/form"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

// ErrInvalidItem is returned for rejected bottle type input.
var ErrInvalidItem = errors.New("invalid bottle type")

// Service is the catalog use-case layer.
type Service struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

// NewService wires a new catalog service instance.
func NewService(repo repository.CatalogRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns bottle types ordered by quantity, filtered by label when q is set.
func (s *Service) List(ctx context.Context, q string) ([]models.CatalogItem, error) {
	return s.repo.ListCatalogItems(ctx, q)
}

// Get returns one bottle type.
func (s *Service) Get(ctx context.Context, id string) (models.CatalogItem, error) {
	return s.repo.GetCatalogItem(ctx, id)
}

// Create validates and stores a new bottle type.
func (s *Service) Create(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	item, err := normalize(item)
	if err != nil {
		return models.CatalogItem{}, err
	}
	item.ID = uuid.NewString()
	if err := s.repo.SaveCatalogItem(ctx, item); err != nil {
		return models.CatalogItem{}, fmt.Errorf("create bottle type %q: %w", item.Label, err)
	}
	s.logger.Info("bottle type created", zap.String("id", item.ID), zap.String("label", item.Label))
	return item, nil
}

// Update replaces every field of an existing bottle type.
func (s *Service) Update(ctx context.Context, id string, item models.CatalogItem) (models.CatalogItem, error) {
	if _, err := s.repo.GetCatalogItem(ctx, id); err != nil {
		return models.CatalogItem{}, err
	}
	item, err := normalize(item)
	if err != nil {
		return models.CatalogItem{}, err
	}
	item.ID = id
	if err := s.repo.SaveCatalogItem(ctx, item); err != nil {
		return models.CatalogItem{}, fmt.Errorf("update bottle type %s: %w", id, err)
	}
	return item, nil
}

// Delete removes a bottle type. Stored sale items keep their copied rates.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteCatalogItem(ctx, id); err != nil {
		return fmt.Errorf("delete bottle type %s: %w", id, err)
	}
	s.logger.Info("bottle type deleted", zap.String("id", id))
	return nil
}

// Lookup returns the per-batch rates of ref. Unknown refs wrap
// repository.ErrNotFound.
func (s *Service) Lookup(ctx context.Context, ref string) (form.Rates, error) {
	item, err := s.repo.GetCatalogItem(ctx, ref)
	if err != nil {
		return form.Rates{}, fmt.Errorf("lookup bottle type %s: %w", ref, err)
	}
	return RatesOf(item), nil
}

// RateBook snapshots the rates of every bottle type.
func (s *Service) RateBook(ctx context.Context) (form.StaticRates, error) {
	items, err := s.repo.ListCatalogItems(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load rate book: %w", err)
	}
	book := make(form.StaticRates, len(items))
	for _, item := range items {
		book[item.ID] = RatesOf(item)
	}
	return book, nil
}

// RatesOf derives form rates from a catalog item.
func RatesOf(item models.CatalogItem) form.Rates {
	return form.Rates{CostPerBatch: item.CostPerBatch(), SellPerBatch: item.SellPerBatch()}
}

func normalize(item models.CatalogItem) (models.CatalogItem, error) {
	item.Label = strings.TrimSpace(item.Label)
	if item.BottlesInBatch == 0 {
		item.BottlesInBatch = 1
	}

	var details []string
	if item.Label == "" {
		details = append(details, "label (e.g. '1 ltr') is required")
	}
	for name, v := range map[string]float64{
		"quantity_ltr":            item.QuantityLtr,
		"can_price":               item.CanPrice,
		"price_per_kg":            item.PricePerKg,
		"box_cost":                item.BoxCost,
		"selling_price_per_batch": item.SellingPricePerBatch,
	} {
		if v < 0 {
			details = append(details, name+" must not be negative")
		}
	}
	if item.BottlesInBatch < 0 {
		details = append(details, "bottles_in_batch must not be negative")
	}
	if len(details) > 0 {
		return item, &models.ValidationError{Err: ErrInvalidItem, Details: details}
	}
	return item, nil
}
