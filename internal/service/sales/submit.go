package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/form"
	"github.com/mamadbah2/salesdesk/internal/pricing"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

const dateLayout = "2006-01-02"

func invalid(detail string) error {
	return &models.ValidationError{Err: ErrInvalidSale, Details: []string{detail}}
}

// SubmitSale implements form.Submitter.
func (s *Service) SubmitSale(ctx context.Context, sub form.Submission) error {
	_, err := s.Save(ctx, sub)
	return err
}

// Save turns a submission into a stored sale. The catalog is authoritative
// for cash cost rates; an edit replaces every item of the existing sale.
func (s *Service) Save(ctx context.Context, sub form.Submission) (models.Sale, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(sub.Date))
	if err != nil {
		return models.Sale{}, invalid("date must be YYYY-MM-DD")
	}

	clientName, err := s.resolveClient(ctx, sub.Header)
	if err != nil {
		return models.Sale{}, err
	}

	sale := models.Sale{
		ID:         uuid.NewString(),
		Date:       date,
		ClientName: clientName,
		Freight:    pricing.ParseNonNegativeOrZero(sub.Freight).InexactFloat64(),
		SaleType:   string(sub.Mode),
		CreatedAt:  s.now(),
	}
	if sub.SaleID != "" {
		existing, err := s.store.GetSale(ctx, sub.SaleID)
		if err != nil {
			return models.Sale{}, fmt.Errorf("load sale %s: %w", sub.SaleID, err)
		}
		sale.ID = existing.ID
		sale.CreatedAt = existing.CreatedAt
	}

	var total decimal.Decimal
	switch sub.Mode {
	case form.ModeCash:
		sale.Items, total, err = s.cashItems(ctx, sub.Cash)
	default:
		sale.SaleType = models.SaleTypeBill
		sale.Items, total, err = billItems(sub.Bill)
	}
	if err != nil {
		return models.Sale{}, err
	}
	sale.QuantityKg = total.InexactFloat64()

	if err := s.store.SaveSale(ctx, sale); err != nil {
		return models.Sale{}, fmt.Errorf("save sale: %w", err)
	}
	s.logger.Info("sale saved",
		zap.String("sale_id", sale.ID),
		zap.String("sale_type", sale.SaleType),
		zap.String("client", sale.ClientName),
		zap.Int("items", len(sale.Items)),
		zap.Bool("edit", sub.SaleID != ""),
	)
	return sale, nil
}

// resolveClient prefers the stored client's name and falls back to the typed
// name when the id does not resolve.
func (s *Service) resolveClient(ctx context.Context, h form.Header) (string, error) {
	name := strings.TrimSpace(h.ClientName)
	if id := strings.TrimSpace(h.ClientID); id != "" {
		client, err := s.store.GetClient(ctx, id)
		switch {
		case err == nil:
			name = client.Name
		case !errors.Is(err, repository.ErrNotFound):
			return "", fmt.Errorf("load client %s: %w", id, err)
		}
	}
	if name == "" {
		return "", invalid("client is required")
	}
	return name, nil
}

func (s *Service) cashItems(ctx context.Context, entries []form.CashEntry) ([]models.SaleItem, decimal.Decimal, error) {
	var (
		items []models.SaleItem
		total decimal.Decimal
	)
	for _, entry := range entries {
		ref := strings.TrimSpace(entry.CatalogRef)
		if ref == "" {
			continue
		}

		rates, err := s.lookupRates(ctx, ref)
		if errors.Is(err, ErrUnknownCatalogItem) {
			return nil, total, invalid("invalid bottle type selected")
		}
		if err != nil {
			return nil, total, err
		}

		batches := pricing.ParseNonNegativeOrZero(entry.Batches).Truncate(0)
		if !batches.IsPositive() {
			continue
		}

		sell := rates.SellPerBatch
		if override, ok := pricing.ParseDecimal(entry.SellPerBatch); ok {
			sell = override
		}

		items = append(items, models.SaleItem{
			CatalogItemID:    ref,
			QuantityKg:       batches.InexactFloat64(),
			CostRatePerKg:    rates.CostPerBatch.InexactFloat64(),
			SellingRatePerKg: sell.InexactFloat64(),
		})
		total = total.Add(batches)
	}
	if len(items) == 0 {
		return nil, total, invalid("at least one bottle line is required")
	}
	return items, total, nil
}

func billItems(entries []form.BillEntry) ([]models.SaleItem, decimal.Decimal, error) {
	if len(entries) == 0 {
		return nil, decimal.Zero, invalid("at least one line item is required")
	}
	var total decimal.Decimal
	items := make([]models.SaleItem, 0, len(entries))
	for _, entry := range entries {
		kg := pricing.ToKilograms(pricing.ParseNonNegativeOrZero(entry.Quantity), pricing.ParseUnit(entry.Unit))
		items = append(items, models.SaleItem{
			QuantityKg:       kg.InexactFloat64(),
			CostRatePerKg:    pricing.ParseNonNegativeOrZero(entry.CostRate).InexactFloat64(),
			SellingRatePerKg: pricing.ParseNonNegativeOrZero(entry.SellRate).InexactFloat64(),
		})
		total = total.Add(kg)
	}
	return items, total, nil
}
