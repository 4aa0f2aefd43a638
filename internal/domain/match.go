package domain

import "time"

// Status is the lifecycle phase of a match. Transitions are monotonic:
// scheduled -> live -> finished. Finished is terminal.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

// ValidStatus reports whether s is one of the known phases.
func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished:
		return true
	}
	return false
}

// Match is a tracked sports match. EndTime may be the zero time when the
// stored column is NULL.
type Match struct {
	ID        int32     `json:"id"`
	Sport     string    `json:"sport"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	Status    Status    `json:"status"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	HomeScore int32     `json:"homeScore"`
	AwayScore int32     `json:"awayScore"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMatch carries the fields needed to insert a match.
type NewMatch struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	HomeScore int32
	AwayScore int32
}

// MatchUpdate is a partial update. Nil fields are left untouched.
type MatchUpdate struct {
	Sport     *string
	HomeTeam  *string
	AwayTeam  *string
	StartTime *time.Time
	EndTime   *time.Time
	Status    *Status
}

// IsEmpty reports whether the update touches no field at all.
func (u MatchUpdate) IsEmpty() bool {
	return u.Sport == nil && u.HomeTeam == nil && u.AwayTeam == nil &&
		u.StartTime == nil && u.EndTime == nil && u.Status == nil
}

// ResolveStatus derives the phase of a match from its time window.
// It returns ok=false when either instant is missing (the zero time),
// which callers treat as "leave the stored status alone".
//
// Boundaries: now == start is live, now == end is finished.
func ResolveStatus(start, end, now time.Time) (Status, bool) {
	if start.IsZero() || end.IsZero() {
		return "", false
	}
	if now.Before(start) {
		return StatusScheduled, true
	}
	if now.Before(end) {
		return StatusLive, true
	}
	return StatusFinished, true
}
