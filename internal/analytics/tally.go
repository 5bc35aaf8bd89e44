package analytics

import (
	"log/slog"
	"sync"
)

// Tally aggregates game_finished events.
type Tally struct {
	mu          sync.Mutex
	totalGames  int
	ties        int
	abandoned   int
	winnerCount map[string]int
	gamesPerDay map[string]int
	totalMoves  int
	durations   []float64
}

func NewTally() *Tally {
	return &Tally{
		winnerCount: make(map[string]int),
		gamesPerDay: make(map[string]int),
	}
}

type Summary struct {
	TotalGames      int
	Ties            int
	Abandoned       int
	Wins            map[string]int
	GamesPerDay     map[string]int
	AverageMoves    float64
	AverageDuration float64
}

// Record folds one event into the tally. Events other than game_finished
// are ignored.
func (t *Tally) Record(e Event) {
	if e.Event != EventGameFinished {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalGames++
	switch e.Payload["status"] {
	case "tied":
		t.ties++
	case "abandoned":
		t.abandoned++
	}
	if winner, ok := e.Payload["winner"].(string); ok && winner != "" {
		t.winnerCount[winner]++
	}
	// JSON numbers decode as float64.
	if moves, ok := e.Payload["moves"].(float64); ok {
		t.totalMoves += int(moves)
	}
	if d, ok := e.Payload["duration"].(float64); ok {
		t.durations = append(t.durations, d)
	}
	t.gamesPerDay[e.Timestamp.Format("2006-01-02")]++
}

func (t *Tally) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{
		TotalGames:  t.totalGames,
		Ties:        t.ties,
		Abandoned:   t.abandoned,
		Wins:        make(map[string]int, len(t.winnerCount)),
		GamesPerDay: make(map[string]int, len(t.gamesPerDay)),
	}
	for k, v := range t.winnerCount {
		s.Wins[k] = v
	}
	for k, v := range t.gamesPerDay {
		s.GamesPerDay[k] = v
	}
	if t.totalGames > 0 {
		s.AverageMoves = float64(t.totalMoves) / float64(t.totalGames)
	}
	if len(t.durations) > 0 {
		sum := 0.0
		for _, d := range t.durations {
			sum += d
		}
		s.AverageDuration = sum / float64(len(t.durations))
	}
	return s
}

func (t *Tally) Log(logger *slog.Logger) {
	s := t.Summary()
	logger.Info("analytics summary",
		"games", s.TotalGames,
		"ties", s.Ties,
		"abandoned", s.Abandoned,
		"wins", s.Wins,
		"avg_moves", s.AverageMoves,
		"avg_duration_s", s.AverageDuration,
		"per_day", s.GamesPerDay,
	)
}
