// Package repository declares the persistence contracts shared by the
// MongoDB and SQLite stores.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique name or label is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// CatalogRepository stores bottle types.
type CatalogRepository interface {
	// ListCatalogItems returns items ordered by quantity, optionally filtered
	// by a case-insensitive label substring.
	ListCatalogItems(ctx context.Context, query string) ([]models.CatalogItem, error)
	GetCatalogItem(ctx context.Context, id string) (models.CatalogItem, error)
	FindCatalogItemByLabel(ctx context.Context, label string) (models.CatalogItem, error)
	SaveCatalogItem(ctx context.Context, item models.CatalogItem) error
	DeleteCatalogItem(ctx context.Context, id string) error
}

// ClientRepository stores customers.
type ClientRepository interface {
	ListClients(ctx context.Context, query string) ([]models.Client, error)
	GetClient(ctx context.Context, id string) (models.Client, error)
	SaveClient(ctx context.Context, client models.Client) error
	DeleteClient(ctx context.Context, id string) error
}

// SaleRepository stores sales with their items. SaveSale replaces every
// item of an existing sale.
type SaleRepository interface {
	// ListSales returns sales newest first.
	ListSales(ctx context.Context) ([]models.Sale, error)
	GetSale(ctx context.Context, id string) (models.Sale, error)
	SaveSale(ctx context.Context, sale models.Sale) error
	DeleteSale(ctx context.Context, id string) error
}

// LocationRepository stores lead locations. Deleting a location deletes its
// leads.
type LocationRepository interface {
	ListLocations(ctx context.Context) ([]models.Location, error)
	GetLocation(ctx context.Context, id string) (models.Location, error)
	FindLocationByName(ctx context.Context, name string) (models.Location, error)
	SaveLocation(ctx context.Context, location models.Location) error
	DeleteLocation(ctx context.Context, id string) error
}

// LeadRepository stores leads.
type LeadRepository interface {
	// ListLeads returns leads newest first.
	ListLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	GetLead(ctx context.Context, id string) (models.Lead, error)
	SaveLead(ctx context.Context, lead models.Lead) error
	DeleteLead(ctx context.Context, id string) error
}

// Store bundles every repository behind one connection.
type Store interface {
	CatalogRepository
	ClientRepository
	SaleRepository
	LocationRepository
	LeadRepository
	Close(ctx context.Context) error
}
