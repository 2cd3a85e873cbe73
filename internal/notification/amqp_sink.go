// Package notification delivers best-effort email/SMS side effects by
// publishing events to a message broker consumed by a downstream notifier.
package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/sunubank/bankapi/internal/core/domain"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/middleware"
	"github.com/sunubank/bankapi/pkg/rabbitmq"
)

// Routing keys consumed by the notification worker.
const (
	routeAccountCreated    = "account.created"
	routeAccountBlocked    = "account.blocked"
	routeAccountArchived   = "account.archived"
	routeClientCredentials = "client.credentials"
	routeVerificationCode  = "client.verification"
)

const publishTimeout = 5 * time.Second

// accountEvent is the payload for account lifecycle notifications.
type accountEvent struct {
	AccountID  string    `json:"account_id"`
	Number     string    `json:"number"`
	ClientID   string    `json:"client_id"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// clientEvent is the payload for client-facing credential notifications.
type clientEvent struct {
	ClientID   string    `json:"client_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Secret     string    `json:"secret"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AMQPSink publishes notification events to RabbitMQ. Failures are logged
// and swallowed so a broker outage never fails a committed state change.
type AMQPSink struct {
	producer *rabbitmq.EventProducer
}

// NewAMQPSink wraps an event producer as a NotificationSink.
func NewAMQPSink(producer *rabbitmq.EventProducer) *AMQPSink {
	return &AMQPSink{producer: producer}
}

var _ portssvc.NotificationSink = (*AMQPSink)(nil)

func (s *AMQPSink) publish(ctx context.Context, routingKey string, body any) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// The triggering request may be done; give the publish its own deadline.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.producer.Publish(pubCtx, routingKey, body); err != nil {
		logger.Error("Failed to publish notification event",
			slog.String("routing_key", routingKey),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("Published notification event", slog.String("routing_key", routingKey))
}

func (s *AMQPSink) NotifyAccountCreated(ctx context.Context, account domain.Account, client domain.Client) {
	s.publish(ctx, routeAccountCreated, accountEvent{
		AccountID:  account.AccountID,
		Number:     account.Number,
		ClientID:   client.ClientID,
		Email:      client.Email,
		Phone:      client.Phone,
		OccurredAt: account.OpenedAt,
	})
}

func (s *AMQPSink) NotifyClientCredentials(ctx context.Context, client domain.Client, tempPassword string) {
	s.publish(ctx, routeClientCredentials, clientEvent{
		ClientID:   client.ClientID,
		Name:       client.Name,
		Email:      client.Email,
		Secret:     tempPassword,
		OccurredAt: time.Now(),
	})
}

func (s *AMQPSink) NotifyVerificationCode(ctx context.Context, client domain.Client, code string) {
	s.publish(ctx, routeVerificationCode, clientEvent{
		ClientID:   client.ClientID,
		Name:       client.Name,
		Email:      client.Email,
		Phone:      client.Phone,
		Secret:     code,
		OccurredAt: time.Now(),
	})
}

func (s *AMQPSink) NotifyAccountBlocked(ctx context.Context, account domain.Account, reason string) {
	s.publish(ctx, routeAccountBlocked, accountEvent{
		AccountID:  account.AccountID,
		Number:     account.Number,
		ClientID:   account.ClientID,
		Reason:     reason,
		OccurredAt: time.Now(),
	})
}

func (s *AMQPSink) NotifyAccountArchived(ctx context.Context, account domain.Account) {
	at := time.Now()
	if account.ArchivedAt != nil {
		at = *account.ArchivedAt
	}
	s.publish(ctx, routeAccountArchived, accountEvent{
		AccountID:  account.AccountID,
		Number:     account.Number,
		ClientID:   account.ClientID,
		OccurredAt: at,
	})
}
