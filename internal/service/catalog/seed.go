package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

// SeedFile is the YAML layout accepted by LoadSeedFile.
type SeedFile struct {
	BottleTypes []models.CatalogItem `yaml:"bottle_types"`
}

// DefaultSeed returns the bottle types a fresh database starts with.
func DefaultSeed() []models.CatalogItem {
	return []models.CatalogItem{
		{Label: "1 ltr", QuantityLtr: 1.0, BottlesInBatch: 12, CanPrice: 4.25, PricePerKg: 9.0, BoxCost: 21, SellingPricePerBatch: 170},
		{Label: "0.5 ltr", QuantityLtr: 0.5, BottlesInBatch: 24, CanPrice: 6.0, PricePerKg: 9.0, BoxCost: 21, SellingPricePerBatch: 220},
		{Label: "5 ltr", QuantityLtr: 5.0, BottlesInBatch: 1, CanPrice: 15.0, PricePerKg: 9.0, BoxCost: 0, SellingPricePerBatch: 80},
	}
}

// LoadSeedFile reads bottle types from a YAML file.
func LoadSeedFile(path string) ([]models.CatalogItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var file SeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(file.BottleTypes) == 0 {
		return nil, fmt.Errorf("seed file %s lists no bottle_types", path)
	}
	return file.BottleTypes, nil
}

// SeedResult counts what Seed changed.
type SeedResult struct {
	Created int
	Updated int
}

// Seed upserts items by label: existing labels keep their id and take the
// new prices, unknown labels are created.
func (s *Service) Seed(ctx context.Context, items []models.CatalogItem) (SeedResult, error) {
	var result SeedResult
	for _, item := range items {
		item, err := normalize(item)
		if err != nil {
			return result, fmt.Errorf("seed %q: %w", item.Label, err)
		}

		existing, err := s.repo.FindCatalogItemByLabel(ctx, item.Label)
		switch {
		case err == nil:
			item.ID = existing.ID
			result.Updated++
		case errors.Is(err, repository.ErrNotFound):
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			result.Created++
		default:
			return result, fmt.Errorf("seed %q: %w", item.Label, err)
		}

		if err := s.repo.SaveCatalogItem(ctx, item); err != nil {
			return result, fmt.Errorf("seed %q: %w", item.Label, err)
		}
	}
	s.logger.Info("catalog seeded", zap.Int("created", result.Created), zap.Int("updated", result.Updated))
	return result, nil
}

// SeedDefaults seeds DefaultSeed when the catalog is empty.
func (s *Service) SeedDefaults(ctx context.Context) error {
	items, err := s.repo.ListCatalogItems(ctx, "")
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return nil
	}
	_, err = s.Seed(ctx, DefaultSeed())
	return err
}
