package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zaidrahmann/sportz-websockets/internal/app"
	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	apperrors "github.com/zaidrahmann/sportz-websockets/internal/platform/errors"
)

const defaultListLimit = 50

// matchError maps repository failures for a single match to a response
// error.
func matchError(err error, id int32) error {
	if errors.Is(err, domain.ErrMatchNotFound) {
		return apperrors.NotFoundError("match not found").WithField("match_id", id)
	}
	return apperrors.InternalError("failed to load match", err).WithField("match_id", id)
}

// respondData wraps a row or row set in the response envelope.
func respondData(c echo.Context, status int, v any) error {
	if err := c.JSON(status, map[string]any{"data": v}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func parseIDParam(c echo.Context, name string) (int32, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError("invalid " + name).WithField(name, raw)
	}
	return int32(id), nil
}

func parseLimitQuery(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, apperrors.ValidationError("limit must be a positive integer").WithField("limit", raw)
	}
	return limit, nil
}

func parseInstant(value, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.ValidationError(field + " must be a valid RFC 3339 timestamp").WithField(field, value)
	}
	return t, nil
}

type createMatchRequest struct {
	Sport     string `json:"sport"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	HomeScore *int32 `json:"homeScore"`
	AwayScore *int32 `json:"awayScore"`
}

func (s *Server) handleCreateMatch(c echo.Context) error {
	var req createMatchRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	req.Sport = strings.TrimSpace(req.Sport)
	req.HomeTeam = strings.TrimSpace(req.HomeTeam)
	req.AwayTeam = strings.TrimSpace(req.AwayTeam)
	if req.Sport == "" || req.HomeTeam == "" || req.AwayTeam == "" {
		return apperrors.ValidationError("sport, homeTeam and awayTeam are required")
	}

	start, err := parseInstant(req.StartTime, "startTime")
	if err != nil {
		return err
	}
	end, err := parseInstant(req.EndTime, "endTime")
	if err != nil {
		return err
	}
	if !end.After(start) {
		return apperrors.ValidationError("endTime must be after startTime")
	}

	var homeScore, awayScore int32
	if req.HomeScore != nil {
		homeScore = *req.HomeScore
	}
	if req.AwayScore != nil {
		awayScore = *req.AwayScore
	}
	if homeScore < 0 || awayScore < 0 {
		return apperrors.ValidationError("scores must be non-negative")
	}

	match, err := s.app.CreateMatch(c.Request().Context(), app.CreateMatchParams{
		Sport:     req.Sport,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		StartTime: start,
		EndTime:   end,
		HomeScore: homeScore,
		AwayScore: awayScore,
	})
	if err != nil {
		return apperrors.InternalError("failed to create match", err)
	}

	return respondData(c, http.StatusCreated, match)
}

func (s *Server) handleListMatches(c echo.Context) error {
	limit, err := parseLimitQuery(c)
	if err != nil {
		return err
	}

	matches, err := s.app.ListMatches(c.Request().Context(), limit)
	if err != nil {
		return apperrors.InternalError("failed to list matches", err)
	}

	return respondData(c, http.StatusOK, matches)
}

func (s *Server) handleGetMatch(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	match, err := s.app.GetMatch(c.Request().Context(), id)
	if err != nil {
		return matchError(err, id)
	}

	return respondData(c, http.StatusOK, match)
}

type updateMatchRequest struct {
	Sport     *string `json:"sport"`
	HomeTeam  *string `json:"homeTeam"`
	AwayTeam  *string `json:"awayTeam"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Status    *string `json:"status"`
}

func (s *Server) handleUpdateMatch(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updateMatchRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	var upd domain.MatchUpdate
	if req.Sport != nil {
		v := strings.TrimSpace(*req.Sport)
		if v == "" {
			return apperrors.ValidationError("sport must not be empty")
		}
		upd.Sport = &v
	}
	if req.HomeTeam != nil {
		v := strings.TrimSpace(*req.HomeTeam)
		if v == "" {
			return apperrors.ValidationError("homeTeam must not be empty")
		}
		upd.HomeTeam = &v
	}
	if req.AwayTeam != nil {
		v := strings.TrimSpace(*req.AwayTeam)
		if v == "" {
			return apperrors.ValidationError("awayTeam must not be empty")
		}
		upd.AwayTeam = &v
	}
	if req.StartTime != nil {
		t, err := parseInstant(*req.StartTime, "startTime")
		if err != nil {
			return err
		}
		upd.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := parseInstant(*req.EndTime, "endTime")
		if err != nil {
			return err
		}
		upd.EndTime = &t
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !domain.ValidStatus(status) {
			return apperrors.ValidationError("status must be one of scheduled, live, finished").WithField("status", *req.Status)
		}
		upd.Status = &status
	}
	if upd.StartTime != nil && upd.EndTime != nil && !upd.EndTime.After(*upd.StartTime) {
		return apperrors.ValidationError("endTime must be after startTime")
	}
	if upd.IsEmpty() {
		return apperrors.ValidationError("at least one field is required")
	}

	match, err := s.app.UpdateMatch(c.Request().Context(), id, upd)
	if err != nil {
		return matchError(err, id)
	}

	return respondData(c, http.StatusOK, match)
}

type scoreRequest struct {
	HomeScore *int32 `json:"homeScore"`
	AwayScore *int32 `json:"awayScore"`
}

func (s *Server) handleUpdateScore(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.HomeScore == nil || req.AwayScore == nil {
		return apperrors.ValidationError("homeScore and awayScore are required")
	}
	if *req.HomeScore < 0 || *req.AwayScore < 0 {
		return apperrors.ValidationError("scores must be non-negative")
	}

	match, err := s.app.UpdateScore(c.Request().Context(), id, *req.HomeScore, *req.AwayScore)
	if err != nil {
		return matchError(err, id)
	}

	return respondData(c, http.StatusOK, match)
}
