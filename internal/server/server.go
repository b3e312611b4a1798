// Package server exposes the battle engine over HTTP JSON plus a WebSocket
// event stream for observers. It is a thin collaborator: all rules live in
// the engine and battle packages.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gridfall/gridfall-server-go/internal/battle"
	"github.com/gridfall/gridfall-server-go/internal/config"
	"github.com/gridfall/gridfall-server-go/internal/engine"
	"github.com/gridfall/gridfall-server-go/internal/stats"
	"go.uber.org/zap"
)

const maxJSONBodyBytes int64 = 1 << 20

// Server wires the HTTP layer to the battle manager.
type Server struct {
	mgr   *battle.Manager
	stats *stats.Store // nil when no DSN is configured
	game  config.GameConfig
	log   *zap.Logger

	rosterMu sync.Mutex
	roster   *battle.Roster

	hub *hub

	srvMu sync.Mutex
	srv   *http.Server
}

// New builds a server around the given manager. stats may be nil.
func New(mgr *battle.Manager, st *stats.Store, game config.GameConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		mgr:   mgr,
		stats: st,
		game:  game,
		log:   logger,
		hub:   newHub(logger),
	}
}

// Listen starts the HTTP server on addr and blocks until shutdown.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()

	s.log.Info("http server listening", zap.String("address", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Routes configures the ServeMux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/run", s.handleNewRun)
	mux.HandleFunc("POST /api/battles", s.handleStartBattle)
	mux.HandleFunc("GET /api/battles/{id}", s.handleState)
	mux.HandleFunc("GET /api/battles/{id}/moves", s.handleLegalMoves)
	mux.HandleFunc("POST /api/battles/{id}/move", s.handleMove)
	mux.HandleFunc("GET /ws/battles/{id}", s.handleWatch)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleNewRun(w http.ResponseWriter, r *http.Request) {
	s.rosterMu.Lock()
	s.roster = battle.StarterRoster(s.game.BoardRows, s.game.BoardCols, s.game.StartingStage, s.game.StartingGold)
	roster := s.roster
	s.rosterMu.Unlock()

	s.log.Info("new run started",
		zap.Int("pieces", roster.Len()),
		zap.Int("stage", roster.Stage),
	)
	writeJSON(w, http.StatusCreated, map[string]any{
		"stage":  roster.Stage,
		"gold":   roster.Gold,
		"pieces": roster.Len(),
	})
}

func (s *Server) handleStartBattle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed int64 `json:"seed"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.rosterMu.Lock()
	roster := s.roster
	s.rosterMu.Unlock()
	if roster == nil {
		httpError(w, http.StatusConflict, "no active run")
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.game.Seed
	}
	b, events := s.mgr.StartBattle(roster, seed)
	writeJSON(w, http.StatusCreated, map[string]any{
		"battle": b.Snapshot(),
		"events": events,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	b, ok := s.mgr.Get(r.PathValue("id"))
	if !ok {
		httpError(w, http.StatusNotFound, "battle not found")
		return
	}
	writeJSON(w, http.StatusOK, b.Snapshot())
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	b, ok := s.mgr.Get(r.PathValue("id"))
	if !ok {
		httpError(w, http.StatusNotFound, "battle not found")
		return
	}
	var pos engine.Position
	if !queryInt(r, "row", &pos.Row) || !queryInt(r, "col", &pos.Col) {
		httpError(w, http.StatusBadRequest, "row and col query parameters required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moves": b.LegalMovesAt(pos)})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		From engine.Position `json:"from"`
		To   engine.Position `json:"to"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.mgr.PlayTurn(id, req.From, req.To)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, battle.ErrBattleNotFound) {
			status = http.StatusNotFound
		}
		httpError(w, status, err.Error())
		return
	}
	b, ok := s.mgr.Get(id)
	if !ok {
		httpError(w, http.StatusNotFound, "battle not found")
		return
	}
	snapshot := b.Snapshot()
	s.hub.broadcast(id, out)
	if out.Over {
		s.recordResult(r.Context(), id, out)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"outcome": out,
		"battle":  snapshot,
	})
}

// recordResult persists a finished battle when the stats store is wired.
func (s *Server) recordResult(ctx context.Context, id string, out battle.Outcome) {
	b, ok := s.mgr.Get(id)
	if !ok {
		return
	}
	if s.stats != nil {
		captures, promotions := 0, 0
		for _, ev := range out.Events {
			switch ev.Type {
			case battle.EventCapture:
				captures++
			case battle.EventPromotion:
				promotions++
			}
		}
		rec := stats.BattleRecord{
			BattleID:   id,
			Stage:      b.Stage(),
			Winner:     out.Winner.String(),
			Captures:   captures,
			Promotions: promotions,
			PiecesLeft: len(b.Board().PiecesByTeam(engine.TeamPlayer)),
		}
		if err := s.stats.RecordBattle(ctx, rec); err != nil {
			s.log.Warn("failed to record battle result", zap.Error(err))
		}
	}
	s.mgr.Remove(id)
	s.hub.close(id)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, dst *int) bool {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return false
	}
	*dst = n
	return true
}
