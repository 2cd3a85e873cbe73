package services

import (
	"context"

	"github.com/sunubank/bankapi/internal/core/domain"
)

// NotificationSink delivers email/SMS side effects. Every method is
// best-effort: implementations log failures and never return them into the
// state transition that triggered the notification.
type NotificationSink interface {
	// NotifyAccountCreated announces a newly opened account to its holder.
	NotifyAccountCreated(ctx context.Context, account domain.Account, client domain.Client)

	// NotifyClientCredentials sends a freshly created client its generated
	// login password.
	NotifyClientCredentials(ctx context.Context, client domain.Client, tempPassword string)

	// NotifyVerificationCode sends the client an SMS verification code.
	NotifyVerificationCode(ctx context.Context, client domain.Client, code string)

	// NotifyAccountBlocked announces that a block was placed on the account.
	NotifyAccountBlocked(ctx context.Context, account domain.Account, reason string)

	// NotifyAccountArchived announces that the account was closed.
	NotifyAccountArchived(ctx context.Context, account domain.Account)
}
