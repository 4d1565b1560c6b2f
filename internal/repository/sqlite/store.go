// Package sqlite implements the repository contracts on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

// Store is the SQLite backed repository.Store.
type Store struct {
	db *sqlx.DB
}

var _ repository.Store = (*Store)(nil)

// Open connects to the SQLite file at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func likePattern(query string) string {
	return "%" + strings.TrimSpace(query) + "%"
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ---- catalog

const catalogColumns = `id, label, quantity_ltr, bottles_in_batch, can_price, price_per_kg, box_cost, selling_price_per_batch`

func (s *Store) ListCatalogItems(ctx context.Context, query string) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	q := `SELECT ` + catalogColumns + ` FROM bottle_types`
	var args []interface{}
	if strings.TrimSpace(query) != "" {
		q += ` WHERE label LIKE ?`
		args = append(args, likePattern(query))
	}
	q += ` ORDER BY quantity_ltr, label`
	if err := s.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, translate(err, "ListCatalogItems")
	}
	return items, nil
}

func (s *Store) GetCatalogItem(ctx context.Context, id string) (models.CatalogItem, error) {
	var item models.CatalogItem
	err := s.db.GetContext(ctx, &item, `SELECT `+catalogColumns+` FROM bottle_types WHERE id = ?`, id)
	return item, translate(err, "GetCatalogItem")
}

func (s *Store) FindCatalogItemByLabel(ctx context.Context, label string) (models.CatalogItem, error) {
	var item models.CatalogItem
	err := s.db.GetContext(ctx, &item, `SELECT `+catalogColumns+` FROM bottle_types WHERE label = ?`, label)
	return item, translate(err, "FindCatalogItemByLabel")
}

func (s *Store) SaveCatalogItem(ctx context.Context, item models.CatalogItem) error {
	const q = `
		INSERT INTO bottle_types (` + catalogColumns + `)
		VALUES (:id, :label, :quantity_ltr, :bottles_in_batch, :can_price, :price_per_kg, :box_cost, :selling_price_per_batch)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			quantity_ltr = excluded.quantity_ltr,
			bottles_in_batch = excluded.bottles_in_batch,
			can_price = excluded.can_price,
			price_per_kg = excluded.price_per_kg,
			box_cost = excluded.box_cost,
			selling_price_per_batch = excluded.selling_price_per_batch
	`
	_, err := s.db.NamedExecContext(ctx, q, item)
	return translate(err, "SaveCatalogItem")
}

func (s *Store) DeleteCatalogItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bottle_types WHERE id = ?`, id)
	if err != nil {
		return translate(err, "DeleteCatalogItem")
	}
	return mustAffect(res)
}

// ---- clients

func (s *Store) ListClients(ctx context.Context, query string) ([]models.Client, error) {
	clients := []models.Client{}
	q := `SELECT id, name, address, gst FROM clients`
	var args []interface{}
	if strings.TrimSpace(query) != "" {
		q += ` WHERE name LIKE ?`
		args = append(args, likePattern(query))
	}
	q += ` ORDER BY name`
	if err := s.db.SelectContext(ctx, &clients, q, args...); err != nil {
		return nil, translate(err, "ListClients")
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (models.Client, error) {
	var c models.Client
	err := s.db.GetContext(ctx, &c, `SELECT id, name, address, gst FROM clients WHERE id = ?`, id)
	return c, translate(err, "GetClient")
}

func (s *Store) SaveClient(ctx context.Context, client models.Client) error {
	const q = `
		INSERT INTO clients (id, name, address, gst) VALUES (:id, :name, :address, :gst)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			gst = excluded.gst
	`
	_, err := s.db.NamedExecContext(ctx, q, client)
	return translate(err, "SaveClient")
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return translate(err, "DeleteClient")
	}
	return mustAffect(res)
}
