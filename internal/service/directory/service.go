// Package directory manages clients, lead locations, and leads.
package directory

import (
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/repository"
)

var (
	// ErrNameRequired is returned when a client, location or lead has no name.
	ErrNameRequired = errors.New("name required")
	// ErrNameTaken is returned when another record already uses the name.
	ErrNameTaken = errors.New("name already exists")
	// ErrUnknownLocation is returned when a lead points at a missing location.
	ErrUnknownLocation = errors.New("unknown location")
)

// Store is the persistence the directory needs.
type Store interface {
	repository.ClientRepository
	repository.LocationRepository
	repository.LeadRepository
}

// Service is the directory use-case layer.
type Service struct {
	store     Store
	locations *Broadcaster
	logger    *zap.Logger
}

// NewService wires a new directory service instance. events may be nil.
func NewService(store Store, events *Broadcaster, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = NewBroadcaster()
	}
	return &Service{store: store, locations: events, logger: logger}
}

// LocationEvents exposes the broadcaster of location changes.
func (s *Service) LocationEvents() *Broadcaster { return s.locations }
