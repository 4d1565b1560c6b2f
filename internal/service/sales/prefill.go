package sales

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/form"
)

// cashCostTolerance is how close a stored item cost must be to a catalog cost
// per batch for the item to count as a batch line.
const cashCostTolerance = 0.5

// OpenEditForm starts a form prefilled from a stored sale.
func (s *Service) OpenEditForm(ctx context.Context, saleID string) (string, form.Snapshot, error) {
	sale, err := s.store.GetSale(ctx, saleID)
	if err != nil {
		return "", form.Snapshot{}, fmt.Errorf("load sale %s: %w", saleID, err)
	}

	mode, err := s.saleMode(ctx, sale)
	if err != nil {
		return "", form.Snapshot{}, err
	}

	if mode == form.ModeCash {
		if err := s.warmRates(ctx, sale.Items); err != nil {
			return "", form.Snapshot{}, fmt.Errorf("prefill sale %s: %w", saleID, err)
		}
	}

	f := form.NewSession(string(mode), s.rates)
	f.SetSaleID(sale.ID)
	f.SetHeader("date", sale.Date.Format(dateLayout))
	f.SetHeader("client_name", sale.ClientName)
	f.SetFreight(formatNumber(sale.Freight))

	for _, item := range sale.Items {
		var init form.RowInit
		if mode == form.ModeCash {
			init = form.RowInit{
				form.FieldCatalogRef:   item.CatalogItemID,
				form.FieldBatches:      formatNumber(item.QuantityKg),
				form.FieldSellPerBatch: formatNumber(item.SellingRatePerKg),
			}
		} else {
			init = form.RowInit{
				form.FieldQuantity: formatNumber(item.QuantityKg),
				form.FieldUnit:     "kg",
				form.FieldCostRate: formatNumber(item.CostRatePerKg),
				form.FieldSellRate: formatNumber(item.SellingRatePerKg),
			}
		}
		if _, err := f.AddRow(mode, init); err != nil {
			return "", form.Snapshot{}, fmt.Errorf("prefill sale %s: %w", saleID, err)
		}
	}

	id := s.sessions.Open(f)
	s.logger.Debug("edit form opened", zap.String("form_id", id), zap.String("sale_id", sale.ID), zap.String("mode", string(mode)))
	return id, f.Snapshot(), nil
}

// warmRates loads the current catalog rates of every batch item so the
// prefilled rows show the cost a resubmit will store. Items that left the
// catalog keep an empty cost.
func (s *Service) warmRates(ctx context.Context, items []models.SaleItem) error {
	for _, item := range items {
		if item.CatalogItemID == "" {
			continue
		}
		_, err := s.lookupRates(ctx, item.CatalogItemID)
		switch {
		case errors.Is(err, ErrUnknownCatalogItem):
			s.logger.Debug("edited sale references a removed catalog item", zap.String("ref", item.CatalogItemID))
		case err != nil:
			return err
		}
	}
	return nil
}

// saleMode returns the stored sale type, or guesses it for sales saved before
// the type was recorded: every item must hold a whole number of batches at a
// cost close to some catalog cost per batch.
func (s *Service) saleMode(ctx context.Context, sale models.Sale) (form.Mode, error) {
	if mode, ok := form.ParseMode(sale.SaleType); ok {
		return mode, nil
	}
	if len(sale.Items) == 0 {
		return form.ModeBill, nil
	}

	catalog, err := s.store.ListCatalogItems(ctx, "")
	if err != nil {
		return "", fmt.Errorf("load catalog: %w", err)
	}
	for _, item := range sale.Items {
		if !looksLikeBatch(item, catalog) {
			return form.ModeBill, nil
		}
	}
	return form.ModeCash, nil
}

func looksLikeBatch(item models.SaleItem, catalog []models.CatalogItem) bool {
	if math.Abs(item.QuantityKg-math.Round(item.QuantityKg)) >= 1e-6 {
		return false
	}
	for _, c := range catalog {
		if math.Abs(item.CostRatePerKg-c.CostPerBatch().InexactFloat64()) < cashCostTolerance {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
