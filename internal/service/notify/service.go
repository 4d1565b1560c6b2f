// Package notify delivers operator notifications over WhatsApp.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	client "github.com/mamadbah2/salesdesk/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrDisabled is returned when WhatsApp delivery is not configured.
var ErrDisabled = errors.New("whatsapp delivery is not configured")

// DigestSource renders the weekly digest text.
type DigestSource interface {
	WeeklyDigest(ctx context.Context, end time.Time) (string, error)
}

// Service sends the weekly digest and ad-hoc messages.
type Service struct {
	client   client.Client
	digests  DigestSource
	digestTo string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new service instance. A nil client disables delivery.
func NewService(c client.Client, digests DigestSource, digestTo string, logger *zap.Logger) *Service {
	svc := &Service{
		client:   c,
		digests:  digests,
		digestTo: digestTo,
		logger:   logger,
		now:      time.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Enabled reports whether messages can be sent.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// SendDigest renders the digest for the week ending now and sends it to the
// configured recipient, split into as many messages as needed.
func (s *Service) SendDigest(ctx context.Context) (models.DigestResult, error) {
	if !s.Enabled() {
		return models.DigestResult{}, ErrDisabled
	}

	text, err := s.digests.WeeklyDigest(ctx, s.now())
	if err != nil {
		return models.DigestResult{}, fmt.Errorf("render digest: %w", err)
	}

	result := models.DigestResult{To: s.digestTo, Text: text}
	for _, part := range client.Chunk(text, client.MaxTextLength) {
		if err := s.send(ctx, s.digestTo, part, false); err != nil {
			return result, fmt.Errorf("send digest part %d: %w", result.Messages+1, err)
		}
		result.Messages++
	}

	s.logger.Info("weekly digest sent", zap.String("to", s.digestTo), zap.Int("messages", result.Messages))
	return result, nil
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *Service) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *Service) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	return err
}
