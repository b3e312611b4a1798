package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gridfall/gridfall-server-go/internal/battle"
	"github.com/gridfall/gridfall-server-go/internal/config"
	"github.com/gridfall/gridfall-server-go/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	mgr := battle.NewManager(logger)
	game := config.GameConfig{BoardRows: 5, BoardCols: 5, StartingStage: 1, Seed: 42}
	srv := New(mgr, nil, game, logger)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// startBattle runs the run+battle setup and returns the battle view.
func startBattle(t *testing.T, ts *httptest.Server) battle.View {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/run", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/battles", map[string]any{"seed": 42})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Battle battle.View `json:"battle"`
	}
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.Battle.ID)
	return created.Battle
}

// firstLegalMove finds a player piece with a legal move via the moves API.
func firstLegalMove(t *testing.T, ts *httptest.Server, view battle.View) (engine.Position, engine.Position) {
	t.Helper()
	for _, pc := range view.Pieces {
		if pc.Team != "player" {
			continue
		}
		url := fmt.Sprintf("%s/api/battles/%s/moves?row=%d&col=%d", ts.URL, view.ID, pc.Pos.Row, pc.Pos.Col)
		resp, err := http.Get(url)
		require.NoError(t, err)
		var body struct {
			Moves []engine.Position `json:"moves"`
		}
		decodeBody(t, resp, &body)
		if len(body.Moves) > 0 {
			return pc.Pos, body.Moves[0]
		}
	}
	t.Fatal("solvability guarantee violated: no player piece has a legal move")
	return engine.Position{}, engine.Position{}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBattleFlow(t *testing.T) {
	ts := newTestServer(t)
	view := startBattle(t, ts)

	// State round-trips.
	resp, err := http.Get(ts.URL + "/api/battles/" + view.ID)
	require.NoError(t, err)
	var state battle.View
	decodeBody(t, resp, &state)
	assert.Equal(t, view.ID, state.ID)
	assert.NotEmpty(t, state.Pieces)

	// The placement guarantee means a legal move always exists turn one.
	from, to := firstLegalMove(t, ts, state)
	resp = postJSON(t, ts.URL+"/api/battles/"+view.ID+"/move", map[string]any{"from": from, "to": to})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved struct {
		Outcome battle.Outcome `json:"outcome"`
		Battle  battle.View    `json:"battle"`
	}
	decodeBody(t, resp, &moved)
	assert.True(t, moved.Outcome.Moved)
	assert.NotEmpty(t, moved.Outcome.Events)
}

func TestBattleNotFound(t *testing.T) {
	ts := newTestServer(t)
	startBattle(t, ts)

	resp, err := http.Get(ts.URL + "/api/battles/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/battles/missing/move", map[string]any{
		"from": engine.Position{Row: 4, Col: 0},
		"to":   engine.Position{Row: 3, Col: 0},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartBattleWithoutRun(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/battles", map[string]any{})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestIllegalMoveRejected(t *testing.T) {
	ts := newTestServer(t)
	view := startBattle(t, ts)

	resp := postJSON(t, ts.URL+"/api/battles/"+view.ID+"/move", map[string]any{
		"from": engine.Position{Row: 0, Col: 0},
		"to":   engine.Position{Row: 4, Col: 4},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWatchStreamsOutcomes(t *testing.T) {
	ts := newTestServer(t)
	view := startBattle(t, ts)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/battles/" + view.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	from, to := firstLegalMove(t, ts, view)
	resp := postJSON(t, ts.URL+"/api/battles/"+view.ID+"/move", map[string]any{"from": from, "to": to})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var out battle.Outcome
	require.NoError(t, json.Unmarshal(msg, &out))
	assert.True(t, out.Moved)
}
