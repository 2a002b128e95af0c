package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"creatorpay/core/events"
	"creatorpay/crypto"
)

func TestHandlerServesReadModel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator, fan := addr(1), addr(2)
	f.emit(
		events.VaultInitialized{Creator: creator, Timestamp: 100},
		events.TipSent{From: fan, To: creator, Amount: 1000, Fee: 20, Net: 980, Timestamp: 110},
	)
	_, err := f.ix.SyncOnce(ctx)
	require.NoError(t, err)

	srv := httptest.NewServer(f.ix.Handler())
	defer srv.Close()
	creatorID := crypto.Format(creator)

	resp, err := http.Get(srv.URL + "/creators/" + creatorID + "/earnings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var earnings CreatorEarnings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&earnings))
	require.Equal(t, uint64(980), earnings.TotalEarned)

	tipsResp, err := http.Get(srv.URL + "/creators/" + creatorID + "/tips?limit=5")
	require.NoError(t, err)
	defer tipsResp.Body.Close()
	var tips []Tip
	require.NoError(t, json.NewDecoder(tipsResp.Body).Decode(&tips))
	require.Len(t, tips, 1)
	require.Equal(t, uint64(20), tips[0].Fee)

	unknown := "/creators/" + crypto.Format(addr(9)) + "/earnings"
	cases := map[string]int{
		unknown:                             http.StatusNotFound,
		"/creators/not-an-address/earnings": http.StatusBadRequest,
		"/creators/top?limit=0":             http.StatusBadRequest,
		"/creators/top":                     http.StatusOK,
		"/healthz":                          http.StatusOK,
	}
	for path, want := range cases {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, want, res.StatusCode, path)
	}
}
