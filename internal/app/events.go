package app

import "party-trivia-service/internal/domain"

// Event names mirror the wire protocol: inbound intents use the noun:verb
// form, outbound notifications use noun:state.
const (
	EventRoomCreated  = "room:created"
	EventRoomJoined   = "room:joined"
	EventRoomPlayers  = "room:players"
	EventGameQuestion = "game:question"
	EventGameVoting   = "game:voting"
	EventGameResults  = "game:results"
	EventGameComplete = "game:complete"
	EventGameEnded    = "game:ended"
	EventError        = "error"
)

// Event is one outbound notification addressed to a single connection.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Notifier delivers events to connections. The transport implements it;
// the orchestrator is solely responsible for deciding the audience.
type Notifier interface {
	Send(connID string, event Event)
}

// RoomCreatedPayload confirms creation to the host.
type RoomCreatedPayload struct {
	Code string `json:"code"`
}

// RoomJoinedPayload confirms a join to the joiner.
type RoomJoinedPayload struct {
	Code    string   `json:"code"`
	Players []string `json:"players"`
}

// VotingPayload carries the shuffled option set for one round.
type VotingPayload struct {
	Answers []domain.VotingOption `json:"answers"`
}

// ErrorPayload reports a failed intent to its originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ErrorEvent wraps a failure for the originating connection only.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Message: message}}
}
