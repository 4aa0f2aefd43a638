// Package app holds the write-path service and the status sync
// scheduler. Broadcasts are only triggered after the corresponding
// database write has completed, so clients are never notified of a
// record that is not yet queryable.
package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	"github.com/zaidrahmann/sportz-websockets/internal/platform/retry"
)

const maxListLimit = 100

var readRetryPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 50 * time.Millisecond,
}

// isTransient treats everything except context cancellation and domain
// sentinels as retryable. Only idempotent reads go through retry.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, domain.ErrMatchNotFound) || errors.Is(err, domain.ErrCommentaryNotFound) {
		return false
	}
	return true
}

// Service coordinates persistence and fan-out for the write path.
type Service struct {
	matches     domain.MatchRepository
	commentary  domain.CommentaryRepository
	broadcaster domain.Broadcaster
	clock       clockwork.Clock
}

func NewService(matches domain.MatchRepository, commentary domain.CommentaryRepository, broadcaster domain.Broadcaster, clock clockwork.Clock) *Service {
	return &Service{
		matches:     matches,
		commentary:  commentary,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

// CreateMatchParams carries validated input for match creation. Times
// have already been parsed by the HTTP layer.
type CreateMatchParams struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	EndTime   time.Time
	HomeScore int32
	AwayScore int32
}

// CreateMatch derives the initial status from the time window, inserts
// the row, and broadcasts match_created to every connection.
func (s *Service) CreateMatch(ctx context.Context, params CreateMatchParams) (*domain.Match, error) {
	status, ok := domain.ResolveStatus(params.StartTime, params.EndTime, s.clock.Now())
	if !ok {
		status = domain.StatusScheduled
	}

	match, err := s.matches.Insert(ctx, domain.NewMatch{
		Sport:     params.Sport,
		HomeTeam:  params.HomeTeam,
		AwayTeam:  params.AwayTeam,
		Status:    status,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
		HomeScore: params.HomeScore,
		AwayScore: params.AwayScore,
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastGlobal(domain.MatchCreatedEvent(*match))
	return match, nil
}

func (s *Service) ListMatches(ctx context.Context, limit int) ([]domain.Match, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return retry.Do(ctx, readRetryPolicy, isTransient, func() ([]domain.Match, error) {
		return s.matches.List(ctx, limit)
	})
}

func (s *Service) GetMatch(ctx context.Context, id int32) (*domain.Match, error) {
	return retry.Do(ctx, readRetryPolicy, isTransient, func() (*domain.Match, error) {
		return s.matches.GetByID(ctx, id)
	})
}

// UpdateMatch applies a partial update. No broadcast: score and status
// changes have their own events with defined fan-out scope.
func (s *Service) UpdateMatch(ctx context.Context, id int32, upd domain.MatchUpdate) (*domain.Match, error) {
	if upd.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}
	return s.matches.Update(ctx, id, upd)
}

// UpdateScore persists the new score and broadcasts score_update
// globally once the write is durable.
func (s *Service) UpdateScore(ctx context.Context, id int32, homeScore, awayScore int32) (*domain.Match, error) {
	match, err := s.matches.UpdateScore(ctx, id, homeScore, awayScore)
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastGlobal(domain.ScoreUpdateEvent(*match))
	return match, nil
}

func (s *Service) ListCommentary(ctx context.Context, matchID int32, limit int) ([]domain.Commentary, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	return retry.Do(ctx, readRetryPolicy, isTransient, func() ([]domain.Commentary, error) {
		return s.commentary.ListByMatch(ctx, matchID, limit)
	})
}

// AddCommentary inserts the entry and broadcasts commentary_added to the
// subscribers of that match only.
func (s *Service) AddCommentary(ctx context.Context, entry domain.NewCommentary) (*domain.Commentary, error) {
	if _, err := s.GetMatch(ctx, entry.MatchID); err != nil {
		return nil, err
	}

	created, err := s.commentary.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToMatch(strconv.FormatInt(int64(created.MatchID), 10), domain.CommentaryAddedEvent(*created))
	return created, nil
}

func (s *Service) DeleteCommentary(ctx context.Context, matchID, id int32) (*domain.Commentary, error) {
	return s.commentary.Delete(ctx, matchID, id)
}
