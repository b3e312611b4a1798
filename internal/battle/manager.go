package battle

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/gridfall/gridfall-server-go/internal/engine"
	"go.uber.org/zap"
)

var ErrBattleNotFound = errors.New("battle not found")

// Manager owns the active battles. Each battle is single-threaded by
// contract; the manager's lock only serializes API access to the map and to
// individual battles.
type Manager struct {
	mu      sync.RWMutex
	battles map[string]*Battle
	log     *zap.Logger
}

// NewManager creates an empty battle manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		battles: make(map[string]*Battle),
		log:     logger,
	}
}

// StartBattle assembles a battle for the roster and registers it. A zero
// seed derives one from the clock; any other seed reproduces the battle's
// spawn, repairs, and opponent exactly.
func (m *Manager) StartBattle(roster *Roster, seed int64) (*Battle, []Event) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	b, events := New(roster, rng, m.log)

	m.mu.Lock()
	m.battles[b.ID] = b
	m.mu.Unlock()

	return b, events
}

// Get returns a registered battle.
func (m *Manager) Get(id string) (*Battle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.battles[id]
	return b, ok
}

// PlayTurn runs a full player-then-enemy turn on the identified battle.
func (m *Manager) PlayTurn(id string, from, to engine.Position) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return Outcome{}, ErrBattleNotFound
	}
	return b.PlayTurn(from, to)
}

// Remove drops a finished battle.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.battles, id)
}

// Count returns the number of registered battles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.battles)
}
