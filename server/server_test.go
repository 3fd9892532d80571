package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"contree/searcher"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(
		WithSeed(99),
		WithSearcher(searcher.NewMCTS(2,
			searcher.WithEpisodes(20),
			searcher.WithSamples(2),
			searcher.WithSeed(5),
		)),
	).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createTable(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/games", map[string]any{"seed": 421})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	require.NotEmpty(t, created["id"])
	return created["id"]
}

func TestServerGameLifecycle(t *testing.T) {
	srv := testServer(t)
	id := createTable(t, srv)

	resp, err := http.Get(fmt.Sprintf("%s/games/%s?seat=south", srv.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[snapshotJSON](t, resp)

	require.Equal(t, "bidding", snap.Phase)
	require.Len(t, snap.Hand, 8, "the requesting seat sees its hand")
	require.Equal(t, [4]int{8, 8, 8, 8}, snap.HandSizes)

	// Without a seat parameter no hand is exposed.
	resp, err = http.Get(fmt.Sprintf("%s/games/%s", srv.URL, id))
	require.NoError(t, err)
	hidden := decode[snapshotJSON](t, resp)
	require.Empty(t, hidden.Hand, "no seat, no cards")
}

func TestServerMoves(t *testing.T) {
	srv := testServer(t)
	id := createTable(t, srv)

	// The seat left of the dealer opens the auction.
	resp, err := http.Get(fmt.Sprintf("%s/games/%s", srv.URL, id))
	require.NoError(t, err)
	snap := decode[snapshotJSON](t, resp)
	toAct := strings.ToLower(snap.ToAct)

	resp, err = http.Get(fmt.Sprintf("%s/games/%s/moves?seat=%s", srv.URL, id, toAct))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	legal := decode[struct {
		Moves []moveJSON `json:"moves"`
	}](t, resp)
	require.NotEmpty(t, legal.Moves)
	require.Equal(t, "pass", legal.Moves[0].Kind, "passing is always open to a bidder")

	// A seat that is not to act has no moves.
	resp, err = http.Get(fmt.Sprintf("%s/games/%s/moves?seat=%s", srv.URL, id, other(toAct)))
	require.NoError(t, err)
	idle := decode[struct {
		Moves []moveJSON `json:"moves"`
	}](t, resp)
	require.Empty(t, idle.Moves)

	// Submit a bid, then verify the snapshot advanced.
	bid := moveJSON{Kind: "bid", Value: 90, Trump: "hearts"}
	resp = postJSON(t, fmt.Sprintf("%s/games/%s/moves", srv.URL, id),
		map[string]any{"seat": toAct, "move": bid})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	after := decode[snapshotJSON](t, resp)
	require.Len(t, after.Auction, 1)
	require.Equal(t, "bid", after.Auction[0].Move.Kind)
	require.NotEqual(t, snap.ToAct, after.ToAct)
}

func TestServerRejectsIllegalMove(t *testing.T) {
	srv := testServer(t)
	id := createTable(t, srv)

	resp, err := http.Get(fmt.Sprintf("%s/games/%s", srv.URL, id))
	require.NoError(t, err)
	snap := decode[snapshotJSON](t, resp)
	toAct := strings.ToLower(snap.ToAct)

	t.Run("wrong turn", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("%s/games/%s/moves", srv.URL, id),
			map[string]any{"seat": other(toAct), "move": moveJSON{Kind: "pass"}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("bid below the minimum", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("%s/games/%s/moves", srv.URL, id),
			map[string]any{"seat": toAct, "move": moveJSON{Kind: "bid", Value: 70, Trump: "spades"}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("garbage card", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("%s/games/%s/moves", srv.URL, id),
			map[string]any{"seat": toAct, "move": moveJSON{Kind: "play", Card: "ZZ"}})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("unknown table", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/games/does-not-exist?seat=north")
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestServerSuggest(t *testing.T) {
	srv := testServer(t)
	id := createTable(t, srv)

	resp, err := http.Get(fmt.Sprintf("%s/games/%s", srv.URL, id))
	require.NoError(t, err)
	snap := decode[snapshotJSON](t, resp)
	toAct := strings.ToLower(snap.ToAct)

	resp = postJSON(t, fmt.Sprintf("%s/games/%s/suggest?seat=%s", srv.URL, id, toAct), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	suggestion := decode[struct {
		Move moveJSON `json:"move"`
	}](t, resp)

	move, err := parseMove(suggestion.Move)
	require.NoError(t, err)

	// The suggestion must be accepted by the table.
	resp = postJSON(t, fmt.Sprintf("%s/games/%s/moves", srv.URL, id),
		map[string]any{"seat": toAct, "move": encodeMove(move)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// other returns a seat name that differs from the given one.
func other(seat string) string {
	if seat == "north" {
		return "east"
	}
	return "north"
}
