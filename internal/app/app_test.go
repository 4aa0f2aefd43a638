package app

import (
	"context"
	"sync"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
)

// fakeMatchRepo is an in-memory MatchRepository for unit tests.
type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int32]domain.Match
	nextID  int32

	insertErr     error
	listActiveErr error
	updateStatusErr map[int32]error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		matches:         make(map[int32]domain.Match),
		nextID:          1,
		updateStatusErr: make(map[int32]error),
	}
}

func (r *fakeMatchRepo) Insert(_ context.Context, m domain.NewMatch) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	match := domain.Match{
		ID:        r.nextID,
		Sport:     m.Sport,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Status:    m.Status,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
	}
	r.nextID++
	r.matches[match.ID] = match
	return &match, nil
}

func (r *fakeMatchRepo) List(_ context.Context, limit int) ([]domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int32) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return &m, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, id int32, upd domain.MatchUpdate) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	if upd.Sport != nil {
		m.Sport = *upd.Sport
	}
	if upd.HomeTeam != nil {
		m.HomeTeam = *upd.HomeTeam
	}
	if upd.AwayTeam != nil {
		m.AwayTeam = *upd.AwayTeam
	}
	if upd.StartTime != nil {
		m.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		m.EndTime = *upd.EndTime
	}
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	r.matches[id] = m
	return &m, nil
}

func (r *fakeMatchRepo) UpdateScore(_ context.Context, id int32, homeScore, awayScore int32) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	m.HomeScore = homeScore
	m.AwayScore = awayScore
	r.matches[id] = m
	return &m, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, id int32, status domain.Status) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateStatusErr[id]; err != nil {
		return nil, err
	}
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	m.Status = status
	r.matches[id] = m
	return &m, nil
}

func (r *fakeMatchRepo) ListActive(_ context.Context) ([]domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listActiveErr != nil {
		return nil, r.listActiveErr
	}
	out := make([]domain.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if m.Status == domain.StatusScheduled || m.Status == domain.StatusLive {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeCommentaryRepo is an in-memory CommentaryRepository for unit tests.
type fakeCommentaryRepo struct {
	mu      sync.Mutex
	entries map[int32]domain.Commentary
	nextID  int32
}

func newFakeCommentaryRepo() *fakeCommentaryRepo {
	return &fakeCommentaryRepo{entries: make(map[int32]domain.Commentary), nextID: 1}
}

func (r *fakeCommentaryRepo) Insert(_ context.Context, entry domain.NewCommentary) (*domain.Commentary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := domain.Commentary{
		ID:        r.nextID,
		MatchID:   entry.MatchID,
		Minute:    entry.Minute,
		Sequence:  entry.Sequence,
		Period:    entry.Period,
		EventType: entry.EventType,
		Actor:     entry.Actor,
		Team:      entry.Team,
		Message:   entry.Message,
		Metadata:  entry.Metadata,
		Tags:      entry.Tags,
	}
	r.nextID++
	r.entries[created.ID] = created
	return &created, nil
}

func (r *fakeCommentaryRepo) ListByMatch(_ context.Context, matchID int32, limit int) ([]domain.Commentary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Commentary, 0)
	for _, e := range r.entries {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCommentaryRepo) Delete(_ context.Context, matchID, id int32) (*domain.Commentary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.MatchID != matchID {
		return nil, domain.ErrCommentaryNotFound
	}
	delete(r.entries, id)
	return &e, nil
}

// recordingBroadcaster captures every broadcast for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	global []domain.Event
	scoped []scopedEvent
}

type scopedEvent struct {
	matchID string
	event   domain.Event
}

func (b *recordingBroadcaster) BroadcastGlobal(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, event)
}

func (b *recordingBroadcaster) BroadcastToMatch(matchID string, event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scoped = append(b.scoped, scopedEvent{matchID: matchID, event: event})
}

func (b *recordingBroadcaster) globalEvents() []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Event, len(b.global))
	copy(out, b.global)
	return out
}

func (b *recordingBroadcaster) scopedEvents() []scopedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]scopedEvent, len(b.scoped))
	copy(out, b.scoped)
	return out
}
