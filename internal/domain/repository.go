package domain

import "context"

// MatchRepository is the persistence contract for matches.
type MatchRepository interface {
	Insert(ctx context.Context, m NewMatch) (*Match, error)
	List(ctx context.Context, limit int) ([]Match, error)
	GetByID(ctx context.Context, id int32) (*Match, error)
	Update(ctx context.Context, id int32, upd MatchUpdate) (*Match, error)
	UpdateScore(ctx context.Context, id int32, homeScore, awayScore int32) (*Match, error)
	UpdateStatus(ctx context.Context, id int32, status Status) (*Match, error)
	// ListActive returns matches whose stored status is scheduled or live.
	// Finished matches are filtered out at the query so the status sync
	// workload stays bounded by the active set.
	ListActive(ctx context.Context) ([]Match, error)
}

// CommentaryRepository is the persistence contract for commentary entries.
type CommentaryRepository interface {
	Insert(ctx context.Context, entry NewCommentary) (*Commentary, error)
	ListByMatch(ctx context.Context, matchID int32, limit int) ([]Commentary, error)
	Delete(ctx context.Context, matchID, id int32) (*Commentary, error)
}

// GateDecision classifies a gatekeeper verdict for a new connection.
type GateDecision int

const (
	GateAllow GateDecision = iota
	GateRateLimited
	GateDenied
)

// ClientInfo identifies the peer attempting a connection.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Gatekeeper is consulted before a WebSocket upgrade is accepted. A
// non-nil error means the gatekeeper itself is unavailable, which is a
// distinct rejection class from rate-limited and denied.
type Gatekeeper interface {
	Check(ctx context.Context, client ClientInfo) (GateDecision, error)
}
