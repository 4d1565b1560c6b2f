package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/pricing"
)

// ErrRequiredField marks a submission blocked by an empty required field.
var ErrRequiredField = errors.New("required field is empty")

// BillEntry is a submitted weight row.
type BillEntry struct {
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	CostRate string `json:"cost_rate"`
	SellRate string `json:"sell_rate"`
}

// CashEntry is a submitted batch row.
type CashEntry struct {
	CatalogRef   string `json:"bottle_type_id"`
	Batches      string `json:"batches"`
	SellPerBatch string `json:"sp_batch"`
}

// Submission is the plain record handed to the submit endpoint. Only the
// live collection is included.
type Submission struct {
	Header
	Mode    Mode        `json:"sale_type"`
	Freight string      `json:"freight"`
	Bill    []BillEntry `json:"bill,omitempty"`
	Cash    []CashEntry `json:"cash,omitempty"`
}

// Submitter creates or updates the stored sale.
type Submitter interface {
	SubmitSale(ctx context.Context, sub Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, sub Submission) error

// SubmitSale calls f.
func (f SubmitterFunc) SubmitSale(ctx context.Context, sub Submission) error {
	return f(ctx, sub)
}

// Snapshot is what the display surface renders after every event.
type Snapshot struct {
	Mode       Mode            `json:"mode"`
	Required   []string        `json:"required"`
	Header     Header          `json:"header"`
	Freight    Field           `json:"freight"`
	WeightRows []WeightRow     `json:"weight_rows"`
	BatchRows  []BatchRow      `json:"batch_rows"`
	Totals     pricing.Display `json:"totals"`
}

// Session binds input events to the editor and the mode controller. It is not
// safe for concurrent use; callers serialize events.
type Session struct {
	state  *State
	book   RateBook
	editor *Editor
	modes  *ModeController
}

// NewSession creates an empty form. prior is the stored sale type when
// editing; book supplies known catalog rates and may be nil.
func NewSession(prior string, book RateBook) *Session {
	s := &Session{book: book}
	s.init(prior)
	return s
}

func (s *Session) init(prior string) {
	s.state = &State{}
	s.editor = NewEditor(s.state, s.book)
	s.modes = NewModeController(s.state, s.editor, prior)
}

// Mode returns the active pricing mode.
func (s *Session) Mode() Mode { return s.modes.Mode() }

// Totals returns the last published totals.
func (s *Session) Totals() pricing.Totals { return s.state.Totals }

// AddRow appends a row to mode's collection.
func (s *Session) AddRow(mode Mode, init RowInit) (Handle, error) {
	return s.editor.AddRow(mode, init)
}

// RemoveRow removes a row from mode's collection.
func (s *Session) RemoveRow(mode Mode, h Handle) error {
	return s.editor.RemoveRow(mode, h)
}

// UpdateField edits one field of a row.
func (s *Session) UpdateField(mode Mode, h Handle, field, raw string) error {
	return s.editor.UpdateField(mode, h, field, raw)
}

// SetFreight edits the shipment freight.
func (s *Session) SetFreight(raw string) { s.editor.SetFreight(raw) }

// SwitchMode changes the pricing mode; see ModeController.Switch.
func (s *Session) SwitchMode(raw string) bool { return s.modes.Switch(raw) }

// SetHeader edits a sale-level field.
func (s *Session) SetHeader(field, raw string) error {
	switch field {
	case "date":
		s.state.Header.Date = strings.TrimSpace(raw)
	case "client_id":
		s.state.Header.ClientID = strings.TrimSpace(raw)
	case "client_name":
		s.state.Header.ClientName = strings.TrimSpace(raw)
	default:
		return ErrUnknownField
	}
	return nil
}

// SetSaleID marks the form as editing an existing sale.
func (s *Session) SetSaleID(id string) { s.state.Header.SaleID = id }

// Recompute republishes the totals.
func (s *Session) Recompute() pricing.Totals { return s.editor.Recompute() }

// PendingSeed starts a catalog lookup for a batch row.
func (s *Session) PendingSeed(h Handle) (SeedTicket, bool) { return s.editor.PendingSeed(h) }

// Hold captures a batch row so a later change can be checked with Current.
func (s *Session) Hold(h Handle) (SeedTicket, bool) { return s.editor.Hold(h) }

// Current reports whether the row behind t is unchanged since t was issued.
func (s *Session) Current(t SeedTicket) bool { return s.editor.Current(t) }

// ApplySeed finishes a catalog lookup started with PendingSeed.
func (s *Session) ApplySeed(t SeedTicket, rates Rates) bool { return s.editor.ApplySeed(t, rates) }

// Snapshot copies the state for display.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:       s.state.Mode,
		Required:   s.modes.RequiredFields(),
		Header:     s.state.Header,
		Freight:    s.state.Freight,
		WeightRows: make([]WeightRow, 0, len(s.state.WeightRows)),
		BatchRows:  make([]BatchRow, 0, len(s.state.BatchRows)),
		Totals:     s.state.Totals.Display(),
	}
	for _, r := range s.state.WeightRows {
		snap.WeightRows = append(snap.WeightRows, *r)
	}
	for _, r := range s.state.BatchRows {
		snap.BatchRows = append(snap.BatchRows, *r)
	}
	return snap
}

// Validate checks the required fields of the live collection and the sale
// header. The inactive collection is never checked.
func (s *Session) Validate() error {
	h := s.state.Header
	if h.Date == "" {
		return &models.ValidationError{Err: ErrRequiredField, Details: []string{"date"}}
	}
	if h.ClientID == "" && h.ClientName == "" {
		return &models.ValidationError{Err: ErrRequiredField, Details: []string{"client"}}
	}

	for _, mode := range []Mode{ModeBill, ModeCash} {
		if !s.modes.Required(mode) {
			continue
		}
		if err := s.validateRows(mode); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) validateRows(mode Mode) error {
	fields := requiredFields[mode]
	if mode == ModeCash {
		for i, r := range s.state.BatchRows {
			values := map[string]Field{
				FieldCatalogRef:   Field(r.CatalogRef),
				FieldBatches:      r.Batches,
				FieldSellPerBatch: r.SellPerBatch,
			}
			if err := missing(i, values, fields); err != nil {
				return err
			}
		}
		return nil
	}
	for i, r := range s.state.WeightRows {
		values := map[string]Field{
			FieldQuantity: r.Quantity,
			FieldUnit:     Field(r.Unit),
			FieldCostRate: r.CostRate,
			FieldSellRate: r.SellRate,
		}
		if err := missing(i, values, fields); err != nil {
			return err
		}
	}
	return nil
}

func missing(index int, values map[string]Field, fields []string) error {
	for _, name := range fields {
		if values[name].Empty() {
			return &models.ValidationError{Err: ErrRequiredField, Details: []string{fmt.Sprintf("row %d: %s", index+1, name)}}
		}
	}
	return nil
}

// Submission serializes the live collection, freight, mode and header.
func (s *Session) Submission() Submission {
	sub := Submission{
		Header:  s.state.Header,
		Mode:    s.state.Mode,
		Freight: string(s.state.Freight),
	}
	if s.state.Mode == ModeCash {
		for _, r := range s.state.BatchRows {
			sub.Cash = append(sub.Cash, CashEntry{
				CatalogRef:   r.CatalogRef,
				Batches:      string(r.Batches),
				SellPerBatch: string(r.SellPerBatch),
			})
		}
		return sub
	}
	for _, r := range s.state.WeightRows {
		sub.Bill = append(sub.Bill, BillEntry{
			Quantity: string(r.Quantity),
			Unit:     string(r.Unit),
			CostRate: string(r.CostRate),
			SellRate: string(r.SellRate),
		})
	}
	return sub
}

// Submit validates the form and hands it to submitter. A successful submit
// resets the form; on failure the state is left exactly as it was.
func (s *Session) Submit(ctx context.Context, submitter Submitter) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := submitter.SubmitSale(ctx, s.Submission()); err != nil {
		return err
	}
	s.Reset()
	return nil
}

// Reset discards every row and header value, as a fresh page load would.
func (s *Session) Reset() {
	s.init("")
}
