// Package sales runs the server-held entry forms and persists the sales they
// submit.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/form"
	"github.com/mamadbah2/salesdesk/internal/pricing"
	"github.com/mamadbah2/salesdesk/internal/repository"
	"github.com/mamadbah2/salesdesk/pkg/clients/pricelist"
)

var (
	// ErrFormNotFound is returned for unknown or expired form ids.
	ErrFormNotFound = errors.New("form not found")
	// ErrInvalidSale is returned when a submission breaks a sale rule.
	ErrInvalidSale = errors.New("invalid sale")
	// ErrUnknownCatalogItem is returned when a catalog ref does not resolve.
	ErrUnknownCatalogItem = errors.New("unknown catalog item")
	// ErrLookupFailed is returned when the catalog could not be reached.
	ErrLookupFailed = errors.New("catalog lookup failed")
)

const rateCacheTTL = time.Minute

// Store is the persistence the sales service needs.
type Store interface {
	repository.SaleRepository
	GetClient(ctx context.Context, id string) (models.Client, error)
	ListCatalogItems(ctx context.Context, query string) ([]models.CatalogItem, error)
}

// Listing is a stored sale with its derived totals.
type Listing struct {
	models.Sale
	Totals pricing.Display `json:"totals"`
}

// Service is the sales use-case layer.
type Service struct {
	store    Store
	lookup   CatalogLookup
	sessions *SessionManager
	rates    *rateCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new sales service instance.
func NewService(store Store, lookup CatalogLookup, sessions *SessionManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = NewSessionManager(2 * time.Hour)
	}
	return &Service{
		store:    store,
		lookup:   lookup,
		sessions: sessions,
		rates:    newRateCache(rateCacheTTL),
		logger:   logger,
		now:      time.Now,
	}
}

// Sessions exposes the open form registry.
func (s *Service) Sessions() *SessionManager { return s.sessions }

// ForgetRates drops cached rates of ref so the next row seeded with it
// triggers a fresh lookup.
func (s *Service) ForgetRates(ref string) { s.rates.forget(ref) }

// OpenForm starts a blank entry form in the default mode.
func (s *Service) OpenForm() (string, form.Snapshot) {
	f := form.NewSession("", s.rates)
	f.SetHeader("date", s.now().Format(dateLayout))
	id := s.sessions.Open(f)
	s.logger.Debug("form opened", zap.String("form_id", id))
	return id, f.Snapshot()
}

// Snapshot returns the current display surface of a form.
func (s *Service) Snapshot(formID string) (form.Snapshot, error) {
	entry, ok := s.sessions.get(formID)
	if !ok {
		return form.Snapshot{}, ErrFormNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.form.Snapshot(), nil
}

// CloseForm discards a form.
func (s *Service) CloseForm(formID string) error {
	if !s.sessions.Close(formID) {
		return ErrFormNotFound
	}
	return nil
}

// HandleEvent applies ev to the form and returns the resulting snapshot.
// When ev picks a catalog item, its rates are resolved with the form unlocked
// before anything changes: a failed lookup leaves the form as it was, and a
// selection overtaken by a later change to the same row is dropped.
func (s *Service) HandleEvent(ctx context.Context, formID string, ev form.Event) (form.Snapshot, error) {
	entry, ok := s.sessions.get(formID)
	if !ok {
		return form.Snapshot{}, ErrFormNotFound
	}

	entry.mu.Lock()
	sel, selecting := catalogSelection(entry.form, ev)
	entry.mu.Unlock()

	var rates form.Rates
	if selecting {
		var err error
		if rates, err = s.lookupRates(ctx, sel.ref); err != nil {
			s.logger.Warn("catalog lookup failed", zap.String("form_id", formID), zap.String("ref", sel.ref), zap.Error(err))
			entry.mu.Lock()
			defer entry.mu.Unlock()
			return entry.form.Snapshot(), err
		}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if selecting && sel.held && !entry.form.Current(sel.guard) {
		s.logger.Debug("stale catalog selection dropped", zap.String("form_id", formID), zap.String("row", string(sel.guard.Handle)))
		return entry.form.Snapshot(), nil
	}

	handle, err := entry.form.Dispatch(ev)
	if err != nil {
		return entry.form.Snapshot(), err
	}
	if _, known := form.ParseMode(ev.Value); ev.Type == form.EventSetMode && !known {
		s.logger.Debug("mode switch ignored", zap.String("form_id", formID), zap.String("value", ev.Value))
	}

	if selecting {
		if sel.held {
			handle = sel.guard.Handle
		}
		// The rate cache may have expired since the lookup; seed from the
		// rates in hand so the row never keeps an empty cost.
		if ticket, ok := entry.form.PendingSeed(handle); ok && ticket.Ref == sel.ref {
			entry.form.ApplySeed(ticket, rates)
		}
	}
	return entry.form.Snapshot(), nil
}

// selection is a catalog item picked by an event. guard holds the row the
// event re-seeds, when there is one.
type selection struct {
	ref   string
	guard form.SeedTicket
	held  bool
}

func catalogSelection(f *form.Session, ev form.Event) (selection, bool) {
	if mode, _ := form.ParseMode(ev.Mode); mode != form.ModeCash {
		return selection{}, false
	}
	switch {
	case ev.Type == form.EventAddRow:
		ref := strings.TrimSpace(ev.Values[form.FieldCatalogRef])
		return selection{ref: ref}, ref != ""
	case ev.Type == form.EventUpdateField && ev.Field == form.FieldCatalogRef:
		ref := strings.TrimSpace(ev.Value)
		guard, ok := f.Hold(ev.Row)
		if ref == "" || !ok {
			return selection{}, false
		}
		return selection{ref: ref, guard: guard, held: true}, true
	default:
		return selection{}, false
	}
}

func (s *Service) lookupRates(ctx context.Context, ref string) (form.Rates, error) {
	if rates, ok := s.rates.Rates(ref); ok {
		return rates, nil
	}
	rates, err := s.lookup.Lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, pricelist.ErrNotFound) {
			return form.Rates{}, fmt.Errorf("%w: %s", ErrUnknownCatalogItem, ref)
		}
		return form.Rates{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	s.rates.put(ref, rates)
	return rates, nil
}

// SubmitForm validates the form and stores its sale. On success the form is
// reset for the next entry; on failure it is left as it was.
func (s *Service) SubmitForm(ctx context.Context, formID string) (models.Sale, error) {
	entry, ok := s.sessions.get(formID)
	if !ok {
		return models.Sale{}, ErrFormNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	var saved models.Sale
	err := entry.form.Submit(ctx, form.SubmitterFunc(func(ctx context.Context, sub form.Submission) error {
		sale, err := s.Save(ctx, sub)
		if err != nil {
			return err
		}
		saved = sale
		return nil
	}))
	if err != nil {
		s.logger.Warn("form submit rejected", zap.String("form_id", formID), zap.Error(err))
		return models.Sale{}, err
	}
	entry.form.SetHeader("date", s.now().Format(dateLayout))
	return saved, nil
}

// List returns every sale newest first.
func (s *Service) List(ctx context.Context) ([]Listing, error) {
	sales, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	out := make([]Listing, 0, len(sales))
	for _, sale := range sales {
		out = append(out, Listing{Sale: sale, Totals: sale.Totals().Display()})
	}
	return out, nil
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id string) (Listing, error) {
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Sale: sale, Totals: sale.Totals().Display()}, nil
}

// Delete removes a sale and its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSale(ctx, id); err != nil {
		return fmt.Errorf("delete sale %s: %w", id, err)
	}
	s.logger.Info("sale deleted", zap.String("sale_id", id))
	return nil
}
