// Package session keeps in-memory games between one remote human and an
// automated opponent. Every accepted move appends an immutable game.State
// to the session history.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"emittr/connect4/internal/game"
	"emittr/connect4/internal/opponent"
)

const (
	StatusActive    = "active"
	StatusWon       = "won"
	StatusTied      = "tied"
	StatusAbandoned = "abandoned"
)

var (
	ErrNotFound = errors.New("game not found")
	ErrFinished = errors.New("game already finished")
	ErrOpponent = errors.New("opponent must be automated")
)

type session struct {
	id         string
	opponent   opponent.Kind
	human      game.Player
	source     opponent.MoveSource
	status     string
	winner     game.Player
	line       []game.Coord
	history    []game.State
	startedAt  time.Time
	endedAt    time.Time
	lastMoveAt time.Time
}

// Snapshot is a copy of a session that is safe to hand out.
type Snapshot struct {
	ID         string
	Opponent   opponent.Kind
	Human      game.Player
	State      game.State
	Status     string
	Winner     game.Player
	Line       []game.Coord
	Moves      int
	StartedAt  time.Time
	EndedAt    time.Time
	LastMoveAt time.Time
}

func (s Snapshot) Finished() bool {
	return s.Status != StatusActive
}

// SourceFactory builds the automated opponent for a new session.
type SourceFactory func(kind opponent.Kind) (opponent.MoveSource, error)

type Config struct {
	// IdleTimeout is how long an active game may go without a move, and how
	// long a finished game is kept, before Sweep drops it.
	IdleTimeout time.Duration
	Sources     SourceFactory
	OnFinish    func(Snapshot)
	Logger      *slog.Logger
	Now         func() time.Time
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	idle     time.Duration
	sources  SourceFactory
	onFinish func(Snapshot)
	logger   *slog.Logger
	now      func() time.Time
}

func NewManager(cfg Config) *Manager {
	m := &Manager{
		sessions: make(map[string]*session),
		idle:     cfg.IdleTimeout,
		sources:  cfg.Sources,
		onFinish: cfg.OnFinish,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if m.sources == nil {
		m.sources = DefaultSources
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// DefaultSources seeds random opponents from the clock.
func DefaultSources(kind opponent.Kind) (opponent.MoveSource, error) {
	switch kind {
	case opponent.KindRandom:
		return opponent.NewRandom(uint64(time.Now().UnixNano())), nil
	case opponent.KindHeuristic:
		return opponent.NewHeuristic(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrOpponent, kind)
}

// Create starts a game. When the human plays Blue the opponent's first move
// is made before Create returns.
func (m *Manager) Create(ctx context.Context, kind opponent.Kind, human game.Player) (Snapshot, error) {
	src, err := m.sources(kind)
	if err != nil {
		return Snapshot{}, err
	}
	now := m.now()
	s := &session{
		id:         uuid.NewString(),
		opponent:   kind,
		human:      human,
		source:     src,
		status:     StatusActive,
		history:    []game.State{game.NewGame()},
		startedAt:  now,
		lastMoveAt: now,
	}

	if human != game.Red {
		if err := m.opponentMove(ctx, s); err != nil {
			return Snapshot{}, err
		}
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	snap := s.snapshot()
	m.mu.Unlock()

	m.logger.Info("game created", "game", s.id, "opponent", kind, "human", human)
	return snap, nil
}

// Move plays the human's column and, if the game goes on, the opponent's
// reply. Engine validation errors are returned unchanged. If the opponent's
// reply failed on an earlier call it is retried before the human's column.
func (m *Manager) Move(ctx context.Context, id string, column int) (Snapshot, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, ErrNotFound
	}
	if s.status != StatusActive {
		snap := s.snapshot()
		m.mu.Unlock()
		return snap, ErrFinished
	}
	if s.current().CurrentPlayer() != s.human {
		// An earlier reply failed; the opponent moves before the human.
		if err := m.opponentMove(ctx, s); err != nil {
			snap := s.snapshot()
			m.mu.Unlock()
			return snap, err
		}
		if s.status != StatusActive {
			snap := s.snapshot()
			m.mu.Unlock()
			m.finished(snap)
			return snap, ErrFinished
		}
	}

	res, err := s.current().PlayPiece(column)
	if err != nil {
		snap := s.snapshot()
		m.mu.Unlock()
		return snap, err
	}
	s.apply(res, m.now())
	if s.status == StatusActive {
		err = m.opponentMove(ctx, s)
	}
	snap := s.snapshot()
	m.mu.Unlock()

	if err != nil {
		return snap, err
	}
	if snap.Finished() {
		m.finished(snap)
	}
	return snap, nil
}

func (m *Manager) opponentMove(ctx context.Context, s *session) error {
	state := s.current()
	col, err := s.source.NextMove(ctx, state)
	if err != nil {
		return fmt.Errorf("opponent move: %w", err)
	}
	res, err := state.PlayPiece(col)
	if err != nil {
		return fmt.Errorf("opponent played column %d: %w", col, err)
	}
	s.apply(res, m.now())
	return nil
}

func (m *Manager) finished(snap Snapshot) {
	m.logger.Info("game finished", "game", snap.ID, "status", snap.Status, "winner", snap.Winner, "moves", snap.Moves)
	if m.onFinish != nil {
		m.onFinish(snap)
	}
}

func (m *Manager) Get(id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return s.snapshot(), nil
}

// History returns every state of the game, oldest first.
func (m *Manager) History(id string) ([]game.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]game.State, len(s.history))
	copy(out, s.history)
	return out, nil
}

// Active returns snapshots of the games still in progress.
func (m *Manager) Active() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Snapshot
	for _, s := range m.sessions {
		if s.status == StatusActive {
			out = append(out, s.snapshot())
		}
	}
	return out
}

// Sweep abandons active games idle past the timeout and drops finished
// games older than it. It returns the number of sessions removed.
func (m *Manager) Sweep(now time.Time) int {
	if m.idle <= 0 {
		return 0
	}
	var abandoned []Snapshot
	removed := 0

	m.mu.Lock()
	for id, s := range m.sessions {
		switch {
		case s.status == StatusActive && now.Sub(s.lastMoveAt) > m.idle:
			s.status = StatusAbandoned
			s.endedAt = now
			abandoned = append(abandoned, s.snapshot())
		case s.status != StatusActive && now.Sub(s.endedAt) > m.idle:
		default:
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	m.mu.Unlock()

	for _, snap := range abandoned {
		m.logger.Info("game abandoned", "game", snap.ID, "idle", m.idle)
		m.finished(snap)
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				m.logger.Debug("swept sessions", "removed", n)
			}
		}
	}
}

func (s *session) current() game.State {
	return s.history[len(s.history)-1]
}

func (s *session) apply(res game.MoveResult, now time.Time) {
	s.history = append(s.history, res.State)
	s.lastMoveAt = now
	switch res.Outcome {
	case game.Win:
		s.status = StatusWon
		s.winner = res.Mover
		s.line = res.Line
		s.endedAt = now
	case game.Tie:
		s.status = StatusTied
		s.endedAt = now
	}
}

func (s *session) snapshot() Snapshot {
	state := s.current()
	return Snapshot{
		ID:         s.id,
		Opponent:   s.opponent,
		Human:      s.human,
		State:      state,
		Status:     s.status,
		Winner:     s.winner,
		Line:       append([]game.Coord(nil), s.line...),
		Moves:      state.Moves(),
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
		LastMoveAt: s.lastMoveAt,
	}
}
