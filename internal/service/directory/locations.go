package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

// ListLocations returns locations ordered by name.
func (s *Service) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.store.ListLocations(ctx)
}

// CreateLocation adds a uniquely named location.
func (s *Service) CreateLocation(ctx context.Context, name string) (models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Location{}, ErrNameRequired
	}
	if err := s.ensureLocationNameFree(ctx, name, ""); err != nil {
		return models.Location{}, err
	}

	loc := models.Location{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	if err := s.saveLocation(ctx, loc); err != nil {
		return models.Location{}, err
	}
	s.publish(models.LocationCreated, loc)
	return loc, nil
}

// RenameLocation changes a location's name, keeping names unique.
func (s *Service) RenameLocation(ctx context.Context, id, name string) (models.Location, error) {
	loc, err := s.store.GetLocation(ctx, id)
	if err != nil {
		return models.Location{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Location{}, ErrNameRequired
	}
	if err := s.ensureLocationNameFree(ctx, name, id); err != nil {
		return models.Location{}, err
	}

	loc.Name = name
	if err := s.saveLocation(ctx, loc); err != nil {
		return models.Location{}, err
	}
	s.publish(models.LocationUpdated, loc)
	return loc, nil
}

// DeleteLocation removes a location together with its leads.
func (s *Service) DeleteLocation(ctx context.Context, id string) error {
	loc, err := s.store.GetLocation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteLocation(ctx, id); err != nil {
		return fmt.Errorf("delete location %s: %w", id, err)
	}
	s.publish(models.LocationDeleted, loc)
	return nil
}

func (s *Service) ensureLocationNameFree(ctx context.Context, name, selfID string) error {
	other, err := s.store.FindLocationByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check location name: %w", err)
	case other.ID != selfID:
		return fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	return nil
}

func (s *Service) saveLocation(ctx context.Context, loc models.Location) error {
	if err := s.store.SaveLocation(ctx, loc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: %s", ErrNameTaken, loc.Name)
		}
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

func (s *Service) publish(kind models.LocationEventKind, loc models.Location) {
	delivered := s.locations.Publish(models.LocationEvent{Kind: kind, ID: loc.ID, Name: loc.Name})
	s.logger.Info("location changed",
		zap.String("kind", string(kind)),
		zap.String("id", loc.ID),
		zap.String("name", loc.Name),
		zap.Int("subscribers", delivered),
	)
}
