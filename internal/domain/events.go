package domain

// EventType tags an outbound WebSocket message.
type EventType string

const (
	EventWelcome         EventType = "welcome"
	EventSubscribed      EventType = "subscribed"
	EventUnsubscribed    EventType = "unsubscribed"
	EventMatchCreated    EventType = "match_created"
	EventScoreUpdate     EventType = "score_update"
	EventCommentaryAdded EventType = "commentary_added"
	EventStatusChange    EventType = "status_change"
)

// Event is one outbound message. MatchID is only set on unicast
// subscription acks; Data carries the match or commentary record on
// broadcasts.
type Event struct {
	Type    EventType `json:"type"`
	MatchID string    `json:"matchId,omitempty"`
	Data    any       `json:"data,omitempty"`
}

func WelcomeEvent() Event {
	return Event{Type: EventWelcome}
}

func SubscribedEvent(matchID string) Event {
	return Event{Type: EventSubscribed, MatchID: matchID}
}

func UnsubscribedEvent(matchID string) Event {
	return Event{Type: EventUnsubscribed, MatchID: matchID}
}

func MatchCreatedEvent(m Match) Event {
	return Event{Type: EventMatchCreated, Data: m}
}

func ScoreUpdateEvent(m Match) Event {
	return Event{Type: EventScoreUpdate, Data: m}
}

func StatusChangeEvent(m Match) Event {
	return Event{Type: EventStatusChange, Data: m}
}

func CommentaryAddedEvent(entry Commentary) Event {
	return Event{Type: EventCommentaryAdded, Data: entry}
}

// Broadcaster fans events out to live connections. Delivery is
// fire-and-forget: a peer that cannot be reached is skipped, never an
// error for the caller.
type Broadcaster interface {
	BroadcastGlobal(event Event)
	BroadcastToMatch(matchID string, event Event)
}
