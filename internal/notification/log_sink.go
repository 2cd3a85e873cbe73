package notification

import (
	"context"
	"log/slog"

	"github.com/sunubank/bankapi/internal/core/domain"
	portssvc "github.com/sunubank/bankapi/internal/core/ports/services"
	"github.com/sunubank/bankapi/internal/middleware"
)

// LogSink is the fallback NotificationSink used when no broker is
// configured. It records each would-be notification at info level.
type LogSink struct{}

// NewLogSink returns a sink that only logs.
func NewLogSink() *LogSink {
	return &LogSink{}
}

var _ portssvc.NotificationSink = (*LogSink)(nil)

func (s *LogSink) NotifyAccountCreated(ctx context.Context, account domain.Account, client domain.Client) {
	middleware.GetLoggerFromCtx(ctx).Info("Notification: account created",
		slog.String("account_id", account.AccountID),
		slog.String("number", account.Number),
		slog.String("client_id", client.ClientID),
	)
}

func (s *LogSink) NotifyClientCredentials(ctx context.Context, client domain.Client, _ string) {
	// The generated password is deliberately not logged.
	middleware.GetLoggerFromCtx(ctx).Info("Notification: client credentials issued",
		slog.String("client_id", client.ClientID),
		slog.String("email", client.Email),
	)
}

func (s *LogSink) NotifyVerificationCode(ctx context.Context, client domain.Client, _ string) {
	middleware.GetLoggerFromCtx(ctx).Info("Notification: verification code issued",
		slog.String("client_id", client.ClientID),
	)
}

func (s *LogSink) NotifyAccountBlocked(ctx context.Context, account domain.Account, reason string) {
	middleware.GetLoggerFromCtx(ctx).Info("Notification: account blocked",
		slog.String("account_id", account.AccountID),
		slog.String("reason", reason),
	)
}

func (s *LogSink) NotifyAccountArchived(ctx context.Context, account domain.Account) {
	middleware.GetLoggerFromCtx(ctx).Info("Notification: account archived",
		slog.String("account_id", account.AccountID),
		slog.String("number", account.Number),
	)
}
