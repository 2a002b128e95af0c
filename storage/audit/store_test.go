package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"creatorpay/core/events"
	"creatorpay/core/types"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendChainsDigests(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "audit.db"))

	first, err := store.Append(ctx, &types.Event{Type: events.TypeWithdrawal, Attributes: map[string]string{"amount": "5", "timestamp": "42"}})
	require.NoError(t, err)
	second, err := store.Append(ctx, &types.Event{Type: events.TypeWithdrawal, Attributes: map[string]string{"amount": "6"}})
	require.NoError(t, err)

	require.Equal(t, int64(42), first.Timestamp)
	require.Equal(t, first.Digest, second.PrevDigest)
	require.Greater(t, second.Sequence, first.Sequence)

	entries, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "6", entries[1].Attributes["amount"])

	count, err := store.Verify(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestVerifyDetectsTampering(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "audit.db"))
	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, &types.Event{Type: events.TypeTipSent, Attributes: map[string]string{"amount": "100"}})
		require.NoError(t, err)
	}
	_, err := store.db.Exec(`UPDATE events SET attributes = '{"amount":"1"}' WHERE sequence = 2`)
	require.NoError(t, err)

	count, err := store.Verify(ctx)
	require.ErrorIs(t, err, ErrChainBroken)
	require.Equal(t, int64(1), count)
}

func TestReopenContinuesChain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	store, err := Open(path)
	require.NoError(t, err)
	first, err := store.Append(ctx, &types.Event{Type: events.TypePlatformUpdated, Attributes: map[string]string{}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := openStore(t, path)
	reopened.Emit(events.Withdrawal{Amount: 7, Remaining: 3, Timestamp: 9})
	entries, err := reopened.List(ctx, first.Sequence, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, first.Digest, entries[0].PrevDigest)
	require.Equal(t, "7", entries[0].Attributes["amount"])

	_, err = reopened.Verify(ctx)
	require.NoError(t, err)
}
