package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	"go.uber.org/zap"
)

// Subjects published by the marketplace
const (
	SubjectCarCreated     = "cars.created"
	SubjectCarApproved    = "cars.approved"
	SubjectCarRejected    = "cars.rejected"
	SubjectCarSold        = "cars.sold"
	SubjectFraudIndicator = "fraud.indicator.created"
	SubjectInquiryCreated = "inquiries.created"
	SubjectReviewCreated  = "reviews.created"
	SubjectNotification   = "notifications.created"
	SubjectPaymentDone    = "payments.completed"
)

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Envelope wraps every published payload
type Envelope struct {
	ID            string      `json:"id"`
	Subject       string      `json:"subject"`
	OccurredAt    time.Time   `json:"occurred_at"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Data          interface{} `json:"data"`
}

// NewEnvelope wraps data for subject
func NewEnvelope(ctx context.Context, subject string, data interface{}) Envelope {
	return Envelope{
		ID:            uuid.NewString(),
		Subject:       subject,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Data:          data,
	}
}

// NATSPublisher publishes JSON envelopes to NATS
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url, clientName string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish marshals data into an envelope and publishes it
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(NewEnvelope(ctx, subject, data))
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	return p.conn.Publish(subject, payload)
}

// Healthy reports whether the connection is usable
func (p *NATSPublisher) Healthy() error {
	if p.conn == nil || !p.conn.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Close drains and closes the connection
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// NoopPublisher discards events; used when NATS is disabled
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.WithContext(ctx).Debug("Event dropped, bus disabled", zap.String("subject", subject))
	return nil
}

// PublishBestEffort publishes and logs failures without returning them
func PublishBestEffort(ctx context.Context, p Publisher, subject string, data interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, data); err != nil {
		metrics.SideEffectFailures.WithLabelValues("event").Inc()
		logger.WithContext(ctx).Warn("Failed to publish event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
