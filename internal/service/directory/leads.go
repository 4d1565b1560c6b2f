package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

// ParseDealStatuses splits a comma-separated status filter.
func ParseDealStatuses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListLeads returns leads newest first.
func (s *Service) ListLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	return s.store.ListLeads(ctx, filter)
}

// CreateLead stores a new lead. Only the name is required.
func (s *Service) CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	if lead.Name == "" {
		return models.Lead{}, ErrNameRequired
	}
	lead.LocationID = strings.TrimSpace(lead.LocationID)
	lead.IndiamartLink = strings.TrimSpace(lead.IndiamartLink)
	lead.DealStatus = strings.TrimSpace(lead.DealStatus)
	lead.Comments = strings.TrimSpace(lead.Comments)
	lead.Address = strings.TrimSpace(lead.Address)
	if err := s.checkLocation(ctx, lead.LocationID); err != nil {
		return models.Lead{}, err
	}

	lead.ID = uuid.NewString()
	lead.CreatedAt = time.Now().UTC()
	if err := s.store.SaveLead(ctx, lead); err != nil {
		return models.Lead{}, fmt.Errorf("save lead: %w", err)
	}
	return s.store.GetLead(ctx, lead.ID)
}

// UpdateLead applies the fields present in patch.
func (s *Service) UpdateLead(ctx context.Context, id string, patch models.LeadPatch) (models.Lead, error) {
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return models.Lead{}, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&lead.Name, patch.Name)
	set(&lead.LocationID, patch.LocationID)
	set(&lead.IndiamartLink, patch.IndiamartLink)
	set(&lead.DealStatus, patch.DealStatus)
	set(&lead.Comments, patch.Comments)
	set(&lead.Address, patch.Address)

	if lead.Name == "" {
		return models.Lead{}, ErrNameRequired
	}
	if patch.LocationID != nil {
		if err := s.checkLocation(ctx, lead.LocationID); err != nil {
			return models.Lead{}, err
		}
	}

	if err := s.store.SaveLead(ctx, lead); err != nil {
		return models.Lead{}, fmt.Errorf("save lead: %w", err)
	}
	return s.store.GetLead(ctx, id)
}

// DeleteLead removes a lead.
func (s *Service) DeleteLead(ctx context.Context, id string) error {
	return s.store.DeleteLead(ctx, id)
}

func (s *Service) checkLocation(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.store.GetLocation(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownLocation, id)
		}
		return err
	}
	return nil
}
