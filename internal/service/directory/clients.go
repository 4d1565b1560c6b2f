package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

// ListClients returns clients by name, filtered by a name substring.
func (s *Service) ListClients(ctx context.Context, q string) ([]models.Client, error) {
	return s.store.ListClients(ctx, q)
}

// GetClient returns one client.
func (s *Service) GetClient(ctx context.Context, id string) (models.Client, error) {
	return s.store.GetClient(ctx, id)
}

// SaveClient creates the client when id is empty and replaces it otherwise.
// GST numbers are stored upper-case.
func (s *Service) SaveClient(ctx context.Context, id string, client models.Client) (models.Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	client.Address = strings.TrimSpace(client.Address)
	client.GST = strings.ToUpper(strings.TrimSpace(client.GST))
	if client.Name == "" {
		return models.Client{}, &models.ValidationError{Err: ErrNameRequired, Details: []string{"client name is required"}}
	}

	if id == "" {
		client.ID = uuid.NewString()
	} else {
		if _, err := s.store.GetClient(ctx, id); err != nil {
			return models.Client{}, err
		}
		client.ID = id
	}

	if err := s.store.SaveClient(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Client{}, fmt.Errorf("%w: %s", ErrNameTaken, client.Name)
		}
		return models.Client{}, fmt.Errorf("save client: %w", err)
	}
	s.logger.Info("client saved", zap.String("id", client.ID), zap.String("name", client.Name))
	return client, nil
}

// DeleteClient removes a client. Sales keep their copied client name.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	return nil
}
