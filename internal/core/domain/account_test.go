package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sunubank/bankapi/internal/core/domain"
)

func ptr(t time.Time) *time.Time { return &t }

func TestStatusAt_Archived(t *testing.T) {
	now := time.Now()
	acc := domain.Account{Archived: true, ArchivedAt: ptr(now)}
	assert.Equal(t, domain.StatusArchived, acc.StatusAt(now))

	// Archived wins even while a block interval is open.
	acc.BlockStart = ptr(now.Add(-time.Hour))
	acc.BlockEnd = ptr(now.Add(time.Hour))
	assert.Equal(t, domain.StatusArchived, acc.StatusAt(now))
}

func TestStatusAt_BlockInEffect(t *testing.T) {
	now := time.Now()
	acc := domain.Account{
		BlockStart: ptr(now.Add(-time.Hour)),
		BlockEnd:   ptr(now.Add(time.Hour)),
	}
	assert.Equal(t, domain.StatusBlocked, acc.StatusAt(now))
	assert.True(t, acc.IsBlockedAt(now))
}

func TestStatusAt_BlockExpired(t *testing.T) {
	// Block window fully in the past: no longer blocked, and flagged for the sweep.
	now := time.Now()
	acc := domain.Account{
		BlockStart: ptr(now.Add(-2 * time.Hour)),
		BlockEnd:   ptr(now.Add(-time.Hour)),
	}
	assert.Equal(t, domain.StatusActive, acc.StatusAt(now))
	assert.True(t, acc.BlockExpiredAt(now))
}

func TestStatusAt_FutureBlock(t *testing.T) {
	// A block scheduled in the future leaves the account active until it starts.
	now := time.Now()
	acc := domain.Account{
		BlockStart:  ptr(now.Add(time.Hour)),
		BlockReason: "fraud",
	}
	assert.Equal(t, domain.StatusActive, acc.StatusAt(now))
	// Indefinite block once started.
	assert.Equal(t, domain.StatusBlocked, acc.StatusAt(now.Add(2*time.Hour)))
	assert.Equal(t, domain.StatusBlocked, acc.StatusAt(now.Add(2000*time.Hour)))
}

func TestStatusAt_NoBlock(t *testing.T) {
	now := time.Now()
	acc := domain.Account{}
	assert.Equal(t, domain.StatusActive, acc.StatusAt(now))
	assert.False(t, acc.IsBlockedAt(now))
	assert.False(t, acc.BlockExpiredAt(now))
}

func TestStatusAt_IsPureOverTime(t *testing.T) {
	// Same account, same instant, always the same answer; derivation never mutates.
	now := time.Now()
	acc := domain.Account{
		BlockStart: ptr(now.Add(-2 * time.Hour)),
		BlockEnd:   ptr(now.Add(-time.Hour)),
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, domain.StatusActive, acc.StatusAt(now))
	}
	assert.False(t, acc.Archived, "status derivation must not archive as a side effect")
}

func TestBlockExpiredAt_ArchivedAccountsAreSkipped(t *testing.T) {
	now := time.Now()
	acc := domain.Account{
		BlockEnd:   ptr(now.Add(-time.Hour)),
		Archived:   true,
		ArchivedAt: ptr(now.Add(-time.Minute)),
	}
	assert.False(t, acc.BlockExpiredAt(now))
}
