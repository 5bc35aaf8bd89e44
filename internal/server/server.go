package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"emittr/connect4/internal/analytics"
	"emittr/connect4/internal/game"
	"emittr/connect4/internal/opponent"
	"emittr/connect4/internal/session"
	"emittr/connect4/internal/storage"
)

type Server struct {
	router    *gin.Engine
	manager   *session.Manager
	store     storage.Store
	analytics analytics.Publisher
	logger    *slog.Logger
}

type Config struct {
	IdleTimeout time.Duration
	Sources     session.SourceFactory
	Store       storage.Store
	Analytics   analytics.Publisher
	Logger      *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := cfg.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	s := &Server{
		router:    router,
		store:     store,
		analytics: cfg.Analytics,
		logger:    logger,
	}
	s.manager = session.NewManager(session.Config{
		IdleTimeout: cfg.IdleTimeout,
		Sources:     cfg.Sources,
		OnFinish:    s.onFinish,
		Logger:      logger,
	})

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/leaderboard", s.handleLeaderboard)
	router.POST("/games", s.handleCreate)
	router.GET("/games", s.handleActive)
	router.GET("/games/:id", s.handleGet)
	router.GET("/games/:id/history", s.handleHistory)
	router.POST("/games/:id/moves", s.handleMove)
	router.GET("/ws", s.handleWS)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Manager() *session.Manager {
	return s.manager
}

// Run serves on addr and sweeps idle games until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string, sweepEvery time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.manager.RunSweeper(sweepCtx, sweepEvery)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type createRequest struct {
	Opponent string `json:"opponent"`
	Play     string `json:"play"`
}

type moveRequest struct {
	Column *int `json:"column" binding:"required"`
}

type gameView struct {
	ID           string       `json:"id"`
	Board        string       `json:"board"`
	Serialized   string       `json:"serialized"`
	Turn         string       `json:"turn"`
	You          string       `json:"you"`
	Opponent     string       `json:"opponent"`
	Status       string       `json:"status"`
	Winner       string       `json:"winner,omitempty"`
	Line         []game.Coord `json:"line,omitempty"`
	Moves        int          `json:"moves"`
	ValidColumns []int        `json:"validColumns"`
}

func newGameView(snap session.Snapshot) gameView {
	v := gameView{
		ID:           snap.ID,
		Board:        snap.State.Board().String(),
		Serialized:   snap.State.Serialize(),
		Turn:         colorName(snap.State.CurrentPlayer()),
		You:          colorName(snap.Human),
		Opponent:     string(snap.Opponent),
		Status:       snap.Status,
		Line:         snap.Line,
		Moves:        snap.Moves,
		ValidColumns: snap.State.ValidColumns(),
	}
	if snap.Status == session.StatusWon {
		v.Winner = colorName(snap.Winner)
	}
	if snap.Finished() {
		v.ValidColumns = []int{}
	}
	return v
}

func colorName(p game.Player) string {
	return strings.ToLower(p.String())
}

func parseColor(v string) (game.Player, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "red", "r":
		return game.Red, true
	case "blue", "b":
		return game.Blue, true
	}
	return 0, false
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
			return
		}
	}
	if req.Opponent == "" {
		req.Opponent = string(opponent.KindRandom)
	}
	kind, err := opponent.ParseKind(req.Opponent)
	if err != nil || !kind.Automated() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "opponent must be random or heuristic"})
		return
	}
	human, ok := parseColor(req.Play)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "play must be red or blue"})
		return
	}

	snap, err := s.manager.Create(c.Request.Context(), kind, human)
	if err != nil {
		s.logger.Error("create game failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newGameView(snap))
}

func (s *Server) handleActive(c *gin.Context) {
	active := s.manager.Active()
	views := make([]gameView, 0, len(active))
	for _, snap := range active {
		views = append(views, newGameView(snap))
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleGet(c *gin.Context) {
	snap, err := s.manager.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameView(snap))
}

func (s *Server) handleHistory(c *gin.Context) {
	history, err := s.manager.History(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]string, len(history))
	for i, st := range history {
		out[i] = st.Serialize()
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "states": out})
}

func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column required"})
		return
	}
	snap, err := s.move(c.Request.Context(), c.Param("id"), *req.Column)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameView(snap))
}

func (s *Server) move(ctx context.Context, id string, column int) (session.Snapshot, error) {
	snap, err := s.manager.Move(ctx, id, column)
	if err != nil {
		return snap, err
	}
	if s.analytics != nil {
		s.analytics.Publish(ctx, analytics.EventMovePlayed, map[string]any{
			"gameId": snap.ID,
			"column": column,
			"status": snap.Status,
			"moves":  snap.Moves,
		})
	}
	return snap, nil
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	rows, err := s.store.GetLeaderboard(c.Request.Context(), 10)
	if err != nil {
		s.logger.Error("leaderboard failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []storage.LeaderboardRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrFinished):
		return http.StatusConflict
	case errors.Is(err, game.ErrPositionOutOfBounds), errors.Is(err, game.ErrColumnFull):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// winnerLabel names the winning side for the leaderboard.
func winnerLabel(snap session.Snapshot) string {
	if snap.Status != session.StatusWon {
		return ""
	}
	if snap.Winner == snap.Human {
		return "human"
	}
	return string(snap.Opponent)
}

func (s *Server) onFinish(snap session.Snapshot) {
	ctx := context.Background()
	winner := winnerLabel(snap)
	if err := s.store.SaveGame(ctx, storage.CompletedGame{
		ID:        snap.ID,
		Winner:    winner,
		Status:    snap.Status,
		Moves:     snap.Moves,
		StartedAt: snap.StartedAt,
		EndedAt:   snap.EndedAt,
	}); err != nil {
		s.logger.Error("save game failed", "game", snap.ID, "err", err)
	}
	if s.analytics != nil {
		s.analytics.Publish(ctx, analytics.EventGameFinished, map[string]any{
			"gameId":    snap.ID,
			"winner":    winner,
			"status":    snap.Status,
			"opponent":  string(snap.Opponent),
			"moves":     snap.Moves,
			"duration":  snap.EndedAt.Sub(snap.StartedAt).Seconds(),
			"startedAt": snap.StartedAt,
			"endedAt":   snap.EndedAt,
		})
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
