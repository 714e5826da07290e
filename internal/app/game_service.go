package app

import (
	"context"
	"fmt"
	"sync"

	"party-trivia-service/internal/domain"
)

// RoomRepository abstracts how room aggregates are stored and how codes are
// minted (in-memory, Redis-backed registry, etc).
type RoomRepository interface {
	Create(hostID string, questions []domain.Question) (*Room, error)
	Get(code string) (*Room, bool)
	Delete(code string)
}

// PackRepository loads curated question packs (from cache/backing store).
type PackRepository interface {
	GetPack(ctx context.Context, packID string) (domain.Pack, error)
}

// Host action names accepted on the host:action intent.
const (
	ActionStart      = "start"
	ActionShowVoting = "show_voting"
	ActionReveal     = "reveal"
	ActionNext       = "next"
)

// GameService is the orchestrator: it validates actor authority, drives the
// phase machine on the room aggregates, and addresses every broadcast. The
// room store itself has no outbound awareness.
type GameService struct {
	rooms  RoomRepository
	packs  PackRepository
	notify Notifier

	mu         sync.Mutex
	membership map[string]string // connection ID -> room code
}

func NewGameService(rooms RoomRepository, packs PackRepository, notify Notifier) *GameService {
	return &GameService{
		rooms:      rooms,
		packs:      packs,
		notify:     notify,
		membership: make(map[string]string),
	}
}

// CreateRoom mints a room for the host from inline questions or, when packID
// is set, from a curated pack. Blank prompt/answer pairs are dropped; creation
// fails when nothing usable remains.
func (s *GameService) CreateRoom(ctx context.Context, hostID string, questions []domain.Question, packID string) (string, error) {
	if packID != "" {
		pack, err := s.packs.GetPack(ctx, packID)
		if err != nil {
			return "", err
		}
		questions = pack.Questions
	}

	valid := filterQuestions(questions)
	if len(valid) == 0 {
		return "", domain.ErrNoQuestions
	}
	if len(valid) > maxQuestions {
		valid = valid[:maxQuestions]
	}

	room, err := s.rooms.Create(hostID, valid)
	if err != nil {
		return "", err
	}

	s.track(hostID, room.Code())
	s.notify.Send(hostID, Event{Type: EventRoomCreated, Payload: RoomCreatedPayload{Code: room.Code()}})
	return room.Code(), nil
}

// JoinRoom adds a connection to a room's roster, announces the new roster to
// the rest of the room, and reconciles the joiner with the live phase.
func (s *GameService) JoinRoom(connID, code, name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	room, err := s.lookup(code)
	if err != nil {
		return err
	}
	if room.HostID() == connID {
		return domain.ErrHostCannotJoin
	}

	res := room.Join(connID, name)
	s.track(connID, code)

	s.notify.Send(connID, Event{Type: EventRoomJoined, Payload: RoomJoinedPayload{Code: code, Players: res.Players}})
	for _, id := range room.MemberIDs() {
		if id == connID {
			continue
		}
		s.notify.Send(id, Event{Type: EventRoomPlayers, Payload: res.Players})
	}

	// A late joiner's view must match the room's live phase.
	switch {
	case res.Question != nil:
		s.notify.Send(connID, Event{Type: EventGameQuestion, Payload: *res.Question})
	case res.Options != nil:
		s.notify.Send(connID, Event{Type: EventGameVoting, Payload: VotingPayload{Answers: res.Options}})
	}
	return nil
}

// SubmitAnswer records a validated answer; when the submission completes the
// roster the room auto-advances to voting and the option set is broadcast.
func (s *GameService) SubmitAnswer(connID, code, answer string) error {
	answer, err := validateAnswer(answer)
	if err != nil {
		return err
	}
	room, err := s.lookup(code)
	if err != nil {
		return err
	}

	advanced, options, err := room.SubmitAnswer(connID, answer)
	if err != nil {
		return err
	}
	if advanced {
		s.broadcast(room, Event{Type: EventGameVoting, Payload: VotingPayload{Answers: options}})
	}
	return nil
}

// CastVote scores a vote. Scores surface later via the reveal leaderboard, so
// no broadcast happens here.
func (s *GameService) CastVote(connID, code, selected string) error {
	room, err := s.lookup(code)
	if err != nil {
		return err
	}
	return room.CastVote(connID, selected)
}

// HostAction drives the explicit phase transitions. Only the room's host may
// invoke it.
func (s *GameService) HostAction(connID, code, action string) error {
	room, err := s.lookup(code)
	if err != nil {
		return err
	}
	if room.HostID() != connID {
		return domain.ErrNotHost
	}

	switch action {
	case ActionStart:
		view, err := room.Start()
		if err != nil {
			return err
		}
		s.broadcast(room, Event{Type: EventGameQuestion, Payload: view})
	case ActionShowVoting:
		options, err := room.ShowVoting()
		if err != nil {
			return err
		}
		s.broadcast(room, Event{Type: EventGameVoting, Payload: VotingPayload{Answers: options}})
	case ActionReveal:
		results, err := room.Reveal()
		if err != nil {
			return err
		}
		s.broadcast(room, Event{Type: EventGameResults, Payload: results})
	case ActionNext:
		complete, view, err := room.Next()
		if err != nil {
			return err
		}
		if complete {
			s.broadcast(room, Event{Type: EventGameComplete})
		} else {
			s.broadcast(room, Event{Type: EventGameQuestion, Payload: view})
		}
	default:
		return fmt.Errorf("unknown host action %q", action)
	}
	return nil
}

// Disconnect handles a connection ending. A departing host ends the whole
// room; a departing player is removed from the roster and may complete the
// current round.
func (s *GameService) Disconnect(connID string) {
	code, ok := s.roomOf(connID)
	if !ok {
		return
	}
	room, found := s.rooms.Get(code)
	if !found {
		s.untrack(connID)
		return
	}

	if room.HostID() == connID {
		for _, id := range room.MemberIDs() {
			if id != connID {
				s.notify.Send(id, Event{Type: EventGameEnded})
			}
			s.untrack(id)
		}
		s.rooms.Delete(code)
		return
	}

	res := room.Leave(connID)
	s.untrack(connID)
	if !res.WasMember {
		return
	}
	s.broadcast(room, Event{Type: EventRoomPlayers, Payload: res.Players})
	if res.Advanced {
		s.broadcast(room, Event{Type: EventGameVoting, Payload: VotingPayload{Answers: res.Options}})
	}
}

func (s *GameService) lookup(code string) (*Room, error) {
	if !validCode(code) {
		return nil, domain.ErrInvalidCode
	}
	room, ok := s.rooms.Get(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (s *GameService) broadcast(room *Room, event Event) {
	for _, id := range room.MemberIDs() {
		s.notify.Send(id, event)
	}
}

func (s *GameService) track(connID, code string) {
	s.mu.Lock()
	s.membership[connID] = code
	s.mu.Unlock()
}

func (s *GameService) untrack(connID string) {
	s.mu.Lock()
	delete(s.membership, connID)
	s.mu.Unlock()
}

func (s *GameService) roomOf(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.membership[connID]
	return code, ok
}
