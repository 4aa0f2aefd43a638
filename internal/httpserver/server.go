// Package httpserver exposes the REST API, the health and metrics
// endpoints, and the WebSocket upgrade path.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/zaidrahmann/sportz-websockets/internal/app"
	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	"github.com/zaidrahmann/sportz-websockets/internal/platform/config"
)

// matchService is the slice of the app layer the handlers need.
type matchService interface {
	CreateMatch(ctx context.Context, params app.CreateMatchParams) (*domain.Match, error)
	ListMatches(ctx context.Context, limit int) ([]domain.Match, error)
	GetMatch(ctx context.Context, id int32) (*domain.Match, error)
	UpdateMatch(ctx context.Context, id int32, upd domain.MatchUpdate) (*domain.Match, error)
	UpdateScore(ctx context.Context, id int32, homeScore, awayScore int32) (*domain.Match, error)
	ListCommentary(ctx context.Context, matchID int32, limit int) ([]domain.Commentary, error)
	AddCommentary(ctx context.Context, entry domain.NewCommentary) (*domain.Commentary, error)
	DeleteCommentary(ctx context.Context, matchID, id int32) (*domain.Commentary, error)
}

// connectionHub is the slice of the hub the WebSocket handler needs.
type connectionHub interface {
	Register(connection *websocket.Conn) error
	Unregister(connection *websocket.Conn)
	HandleMessage(connection *websocket.Conn, data []byte)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app        matchService
	hub        connectionHub
	gatekeeper domain.Gatekeeper

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app matchService, hub connectionHub, gatekeeper domain.Gatekeeper, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		hub:          hub,
		gatekeeper:   gatekeeper,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
