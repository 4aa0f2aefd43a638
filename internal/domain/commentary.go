package domain

import "time"

// Commentary is one timestamped commentary entry for a match. Optional
// columns map to pointer fields so NULL survives the round trip.
type Commentary struct {
	ID        int32          `json:"id"`
	MatchID   int32          `json:"matchId"`
	Minute    *int32         `json:"minute"`
	Sequence  *int32         `json:"sequence"`
	Period    *string        `json:"period"`
	EventType *string        `json:"eventType"`
	Actor     *string        `json:"actor"`
	Team      *string        `json:"team"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
	Tags      []string       `json:"tags"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewCommentary carries the fields needed to insert a commentary entry.
type NewCommentary struct {
	MatchID   int32
	Minute    *int32
	Sequence  *int32
	Period    *string
	EventType *string
	Actor     *string
	Team      *string
	Message   string
	Metadata  map[string]any
	Tags      []string
}
