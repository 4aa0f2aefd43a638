package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	apperrors "github.com/zaidrahmann/sportz-websockets/internal/platform/errors"
)

func (s *Server) handleListCommentary(c echo.Context) error {
	matchID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	limit, err := parseLimitQuery(c)
	if err != nil {
		return err
	}

	entries, err := s.app.ListCommentary(c.Request().Context(), matchID, limit)
	if err != nil {
		return matchError(err, matchID)
	}

	return respondData(c, http.StatusOK, entries)
}

type addCommentaryRequest struct {
	Minute    *int32         `json:"minute"`
	Sequence  *int32         `json:"sequence"`
	Period    *string        `json:"period"`
	EventType *string        `json:"eventType"`
	Actor     *string        `json:"actor"`
	Team      *string        `json:"team"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
	Tags      []string       `json:"tags"`
}

func (s *Server) handleAddCommentary(c echo.Context) error {
	matchID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req addCommentaryRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return apperrors.ValidationError("message is required")
	}
	if req.Minute != nil && *req.Minute < 0 {
		return apperrors.ValidationError("minute must be non-negative")
	}

	entry, err := s.app.AddCommentary(c.Request().Context(), domain.NewCommentary{
		MatchID:   matchID,
		Minute:    req.Minute,
		Sequence:  req.Sequence,
		Period:    req.Period,
		EventType: req.EventType,
		Actor:     req.Actor,
		Team:      req.Team,
		Message:   req.Message,
		Metadata:  req.Metadata,
		Tags:      req.Tags,
	})
	if err != nil {
		return matchError(err, matchID)
	}

	return respondData(c, http.StatusCreated, entry)
}

func (s *Server) handleDeleteCommentary(c echo.Context) error {
	matchID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "commentId")
	if err != nil {
		return err
	}

	deleted, err := s.app.DeleteCommentary(c.Request().Context(), matchID, commentID)
	if errors.Is(err, domain.ErrCommentaryNotFound) {
		return apperrors.NotFoundError("commentary not found").
			WithField("match_id", matchID).
			WithField("comment_id", commentID)
	}
	if err != nil {
		return apperrors.InternalError("failed to delete commentary", err).WithField("comment_id", commentID)
	}

	return respondData(c, http.StatusOK, deleted)
}
