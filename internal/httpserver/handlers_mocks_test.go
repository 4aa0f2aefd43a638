package httpserver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/zaidrahmann/sportz-websockets/internal/app"
	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	"github.com/zaidrahmann/sportz-websockets/internal/platform/config"
	apperrors "github.com/zaidrahmann/sportz-websockets/internal/platform/errors"
)

// --- Mock implementations ---

type mockMatchService struct {
	createMatchFn      func(ctx context.Context, params app.CreateMatchParams) (*domain.Match, error)
	listMatchesFn      func(ctx context.Context, limit int) ([]domain.Match, error)
	getMatchFn         func(ctx context.Context, id int32) (*domain.Match, error)
	updateMatchFn      func(ctx context.Context, id int32, upd domain.MatchUpdate) (*domain.Match, error)
	updateScoreFn      func(ctx context.Context, id int32, homeScore, awayScore int32) (*domain.Match, error)
	listCommentaryFn   func(ctx context.Context, matchID int32, limit int) ([]domain.Commentary, error)
	addCommentaryFn    func(ctx context.Context, entry domain.NewCommentary) (*domain.Commentary, error)
	deleteCommentaryFn func(ctx context.Context, matchID, id int32) (*domain.Commentary, error)
}

func (m *mockMatchService) CreateMatch(ctx context.Context, params app.CreateMatchParams) (*domain.Match, error) {
	if m.createMatchFn != nil {
		return m.createMatchFn(ctx, params)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMatchService) ListMatches(ctx context.Context, limit int) ([]domain.Match, error) {
	if m.listMatchesFn != nil {
		return m.listMatchesFn(ctx, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMatchService) GetMatch(ctx context.Context, id int32) (*domain.Match, error) {
	if m.getMatchFn != nil {
		return m.getMatchFn(ctx, id)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchService) UpdateMatch(ctx context.Context, id int32, upd domain.MatchUpdate) (*domain.Match, error) {
	if m.updateMatchFn != nil {
		return m.updateMatchFn(ctx, id, upd)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchService) UpdateScore(ctx context.Context, id int32, homeScore, awayScore int32) (*domain.Match, error) {
	if m.updateScoreFn != nil {
		return m.updateScoreFn(ctx, id, homeScore, awayScore)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchService) ListCommentary(ctx context.Context, matchID int32, limit int) ([]domain.Commentary, error) {
	if m.listCommentaryFn != nil {
		return m.listCommentaryFn(ctx, matchID, limit)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchService) AddCommentary(ctx context.Context, entry domain.NewCommentary) (*domain.Commentary, error) {
	if m.addCommentaryFn != nil {
		return m.addCommentaryFn(ctx, entry)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMatchService) DeleteCommentary(ctx context.Context, matchID, id int32) (*domain.Commentary, error) {
	if m.deleteCommentaryFn != nil {
		return m.deleteCommentaryFn(ctx, matchID, id)
	}
	return nil, domain.ErrCommentaryNotFound
}

// mockHub records hub calls without a real actor behind them.
type mockHub struct {
	mu          sync.Mutex
	registered  []*websocket.Conn
	unregistered []*websocket.Conn
	messages    [][]byte
	registerErr error
}

func (m *mockHub) Register(conn *websocket.Conn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registerErr != nil {
		return m.registerErr
	}
	m.registered = append(m.registered, conn)
	return nil
}

func (m *mockHub) Unregister(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregistered = append(m.unregistered, conn)
}

func (m *mockHub) HandleMessage(_ *websocket.Conn, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, data)
}

type staticGatekeeper struct {
	decision domain.GateDecision
	err      error
}

func (g *staticGatekeeper) Check(context.Context, domain.ClientInfo) (domain.GateDecision, error) {
	return g.decision, g.err
}

// --- Test helpers ---

func newTestServer(t *testing.T, app matchService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo:   echo.New(),
		config: &config.Config{Port: "0", APIRatePerSecond: 1000, APIRateBurst: 1000},
		app:    app,
		hub:    &mockHub{},
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHub(h connectionHub) func(*Server) {
	return func(s *Server) {
		s.hub = h
	}
}

func withGatekeeper(g domain.Gatekeeper) func(*Server) {
	return func(s *Server) {
		s.gatekeeper = g
	}
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler wraps a handler with the error middleware, matching
// production behavior.
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return apperrors.Middleware()(handler)(c)
}
