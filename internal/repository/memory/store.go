// Package memory is an in-process repository.Store for tests and throwaway
// demo runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

// Store keeps every record in maps guarded by one mutex.
type Store struct {
	mu        sync.RWMutex
	catalog   map[string]models.CatalogItem
	clients   map[string]models.Client
	sales     map[string]models.Sale
	locations map[string]models.Location
	leads     map[string]models.Lead
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		catalog:   make(map[string]models.CatalogItem),
		clients:   make(map[string]models.Client),
		sales:     make(map[string]models.Sale),
		locations: make(map[string]models.Location),
		leads:     make(map[string]models.Lead),
	}
}

func (s *Store) Close(context.Context) error { return nil }

func contains(value, query string) bool {
	query = strings.TrimSpace(query)
	return query == "" || strings.Contains(strings.ToLower(value), strings.ToLower(query))
}

func (s *Store) ListCatalogItems(_ context.Context, query string) ([]models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []models.CatalogItem{}
	for _, item := range s.catalog {
		if contains(item.Label, query) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].QuantityLtr != items[j].QuantityLtr {
			return items[i].QuantityLtr < items[j].QuantityLtr
		}
		return items[i].Label < items[j].Label
	})
	return items, nil
}

func (s *Store) GetCatalogItem(_ context.Context, id string) (models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.catalog[id]
	if !ok {
		return models.CatalogItem{}, repository.ErrNotFound
	}
	return item, nil
}

func (s *Store) FindCatalogItemByLabel(_ context.Context, label string) (models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.catalog {
		if item.Label == label {
			return item, nil
		}
	}
	return models.CatalogItem{}, repository.ErrNotFound
}

func (s *Store) SaveCatalogItem(_ context.Context, item models.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.catalog {
		if id != item.ID && other.Label == item.Label {
			return repository.ErrDuplicate
		}
	}
	s.catalog[item.ID] = item
	return nil
}

func (s *Store) DeleteCatalogItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.catalog[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.catalog, id)
	return nil
}

func (s *Store) ListClients(_ context.Context, query string) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := []models.Client{}
	for _, c := range s.clients {
		if contains(c.Name, query) {
			clients = append(clients, c)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (s *Store) GetClient(_ context.Context, id string) (models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return models.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *Store) SaveClient(_ context.Context, client models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.clients {
		if id != client.ID && other.Name == client.Name {
			return repository.ErrDuplicate
		}
	}
	s.clients[client.ID] = client
	return nil
}

func (s *Store) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

func copySale(sale models.Sale) models.Sale {
	sale.Items = append([]models.SaleItem(nil), sale.Items...)
	return sale
}

func (s *Store) ListSales(_ context.Context) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sales := make([]models.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		sales = append(sales, copySale(sale))
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].Date.Equal(sales[j].Date) {
			return sales[i].Date.After(sales[j].Date)
		}
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, id string) (models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	if !ok {
		return models.Sale{}, repository.ErrNotFound
	}
	return copySale(sale), nil
}

func (s *Store) SaveSale(_ context.Context, sale models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale = copySale(sale)
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		sale.Items[i].Position = i
	}
	if existing, ok := s.sales[sale.ID]; ok {
		sale.CreatedAt = existing.CreatedAt
	}
	s.sales[sale.ID] = sale
	return nil
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sales, id)
	return nil
}

func (s *Store) ListLocations(_ context.Context) ([]models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	locations := make([]models.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].Name < locations[j].Name })
	return locations, nil
}

func (s *Store) GetLocation(_ context.Context, id string) (models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[id]
	if !ok {
		return models.Location{}, repository.ErrNotFound
	}
	return loc, nil
}

func (s *Store) FindLocationByName(_ context.Context, name string) (models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, loc := range s.locations {
		if loc.Name == name {
			return loc, nil
		}
	}
	return models.Location{}, repository.ErrNotFound
}

func (s *Store) SaveLocation(_ context.Context, location models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.locations {
		if id != location.ID && other.Name == location.Name {
			return repository.ErrDuplicate
		}
	}
	if existing, ok := s.locations[location.ID]; ok {
		location.CreatedAt = existing.CreatedAt
	}
	s.locations[location.ID] = location
	return nil
}

func (s *Store) DeleteLocation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.locations, id)
	for leadID, lead := range s.leads {
		if lead.LocationID == id {
			delete(s.leads, leadID)
		}
	}
	return nil
}

func (s *Store) withLocationName(lead models.Lead) models.Lead {
	lead.LocationName = s.locations[lead.LocationID].Name
	return lead
}

func (s *Store) ListLeads(_ context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	statuses := make(map[string]bool, len(filter.DealStatuses))
	for _, status := range filter.DealStatuses {
		statuses[status] = true
	}
	leads := []models.Lead{}
	for _, lead := range s.leads {
		if filter.LocationID != "" && lead.LocationID != filter.LocationID {
			continue
		}
		if len(statuses) > 0 && !statuses[lead.DealStatus] {
			continue
		}
		leads = append(leads, s.withLocationName(lead))
	}
	sort.Slice(leads, func(i, j int) bool {
		if !leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].CreatedAt.After(leads[j].CreatedAt)
		}
		return leads[i].ID > leads[j].ID
	})
	return leads, nil
}

func (s *Store) GetLead(_ context.Context, id string) (models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[id]
	if !ok {
		return models.Lead{}, repository.ErrNotFound
	}
	return s.withLocationName(lead), nil
}

func (s *Store) SaveLead(_ context.Context, lead models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead.LocationName = ""
	if existing, ok := s.leads[lead.ID]; ok {
		lead.CreatedAt = existing.CreatedAt
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *Store) DeleteLead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}
