package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
)

const saleColumns = `id, date, client_name, freight, quantity_kg, sale_type, created_at`

const itemColumns = `sale_id, position, catalog_item_id, quantity_kg, cost_rate_per_kg, selling_rate_per_kg`

func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	sales := []models.Sale{}
	q := `SELECT ` + saleColumns + ` FROM sales ORDER BY date DESC, created_at DESC`
	if err := s.db.SelectContext(ctx, &sales, q); err != nil {
		return nil, translate(err, "ListSales")
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
	}
	items, err := s.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = items[sales[i].ID]
	}
	return sales, nil
}

func (s *Store) itemsFor(ctx context.Context, saleIDs []string) (map[string][]models.SaleItem, error) {
	q, args, err := sqlx.In(`SELECT `+itemColumns+` FROM sale_items WHERE sale_id IN (?) ORDER BY sale_id, position`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("build sale item query: %w", err)
	}
	var items []models.SaleItem
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(q), args...); err != nil {
		return nil, translate(err, "ListSaleItems")
	}
	grouped := make(map[string][]models.SaleItem, len(saleIDs))
	for _, item := range items {
		grouped[item.SaleID] = append(grouped[item.SaleID], item)
	}
	return grouped, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (models.Sale, error) {
	var sale models.Sale
	if err := s.db.GetContext(ctx, &sale, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id); err != nil {
		return sale, translate(err, "GetSale")
	}
	items, err := s.itemsFor(ctx, []string{id})
	if err != nil {
		return sale, err
	}
	sale.Items = items[id]
	return sale, nil
}

func (s *Store) SaveSale(ctx context.Context, sale models.Sale) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sale transaction: %w", err)
	}
	defer tx.Rollback()

	sale.Date = sale.Date.UTC()
	sale.CreatedAt = sale.CreatedAt.UTC()
	const upsert = `
		INSERT INTO sales (` + saleColumns + `)
		VALUES (:id, :date, :client_name, :freight, :quantity_kg, :sale_type, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			client_name = excluded.client_name,
			freight = excluded.freight,
			quantity_kg = excluded.quantity_kg,
			sale_type = excluded.sale_type
	`
	if _, err := tx.NamedExecContext(ctx, upsert, sale); err != nil {
		return translate(err, "SaveSale")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, sale.ID); err != nil {
		return translate(err, "ReplaceSaleItems")
	}

	const insertItem = `
		INSERT INTO sale_items (` + itemColumns + `)
		VALUES (:sale_id, :position, :catalog_item_id, :quantity_kg, :cost_rate_per_kg, :selling_rate_per_kg)
	`
	for i, item := range sale.Items {
		item.SaleID = sale.ID
		item.Position = i
		if _, err := tx.NamedExecContext(ctx, insertItem, item); err != nil {
			return translate(err, "InsertSaleItem")
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}
	return nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, id); err != nil {
		return translate(err, "DeleteSaleItems")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return translate(err, "DeleteSale")
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	return tx.Commit()
}
