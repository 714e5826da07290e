package app

import (
	"errors"
	"testing"

	"party-trivia-service/internal/domain"
)

func newTwoQuestionRoom() *Room {
	return NewRoom("4242", "host", []domain.Question{
		{Text: "Capital of France?", CorrectAnswer: "Paris"},
		{Text: "2+2?", CorrectAnswer: "4"},
	})
}

func TestPhaseTransitionsFollowTable(t *testing.T) {
	room := newTwoQuestionRoom()
	room.Join("p1", "Ann")

	// waiting: only start is legal.
	if _, err := room.ShowVoting(); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("show_voting from waiting: %v", err)
	}
	if _, err := room.Reveal(); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("reveal from waiting: %v", err)
	}
	if _, _, err := room.Next(); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("next from waiting: %v", err)
	}

	if _, err := room.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if room.Phase() != domain.PhaseQuestion {
		t.Fatalf("expected question phase, got %s", room.Phase())
	}

	// question: reveal must fail and leave the phase untouched.
	if _, err := room.Reveal(); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("reveal from question: %v", err)
	}
	if room.Phase() != domain.PhaseQuestion {
		t.Fatalf("failed reveal mutated phase to %s", room.Phase())
	}
	if _, err := room.Start(); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("start from question: %v", err)
	}

	if _, err := room.ShowVoting(); err != nil {
		t.Fatalf("show_voting: %v", err)
	}
	if err := room.CastVote("p1", "Paris"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := room.Reveal(); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if complete, _, err := room.Next(); err != nil || complete {
		t.Fatalf("next to question 2: complete=%v err=%v", complete, err)
	}
	if room.Phase() != domain.PhaseQuestion {
		t.Fatalf("expected question phase after next, got %s", room.Phase())
	}

	if _, err := room.ShowVoting(); err != nil {
		t.Fatalf("show_voting round 2: %v", err)
	}
	if _, err := room.Reveal(); err != nil {
		t.Fatalf("reveal round 2: %v", err)
	}
	complete, _, err := room.Next()
	if err != nil || !complete {
		t.Fatalf("expected completion, complete=%v err=%v", complete, err)
	}
	if room.Phase() != domain.PhaseComplete {
		t.Fatalf("expected complete phase, got %s", room.Phase())
	}
	if _, _, err := room.Next(); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("next from complete should fail, got %v", err)
	}
}

func TestRoundGainsResetEachQuestion(t *testing.T) {
	room := newTwoQuestionRoom()
	room.Join("p1", "Ann")

	if _, err := room.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := room.ShowVoting(); err != nil {
		t.Fatalf("show_voting: %v", err)
	}
	if err := room.CastVote("p1", "Paris"); err != nil {
		t.Fatalf("vote: %v", err)
	}

	results, err := room.Reveal()
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(results.Scores) != 1 || results.Scores[0].Gained != votePoints {
		t.Fatalf("expected round gain %d, got %+v", votePoints, results.Scores)
	}

	if _, _, err := room.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := room.ShowVoting(); err != nil {
		t.Fatalf("show_voting round 2: %v", err)
	}
	results, err = room.Reveal()
	if err != nil {
		t.Fatalf("reveal round 2: %v", err)
	}
	if results.Scores[0].Gained != 0 {
		t.Fatalf("expected gain reset, got %+v", results.Scores)
	}
	// Cumulative score persists across rounds.
	lb := room.Leaderboard()
	if len(lb) != 1 || lb[0].Score != votePoints {
		t.Fatalf("expected cumulative %d, got %+v", votePoints, lb)
	}
}

func TestSubmitAnswerRequiresRosterMembership(t *testing.T) {
	room := newTwoQuestionRoom()
	room.Join("p1", "Ann")
	room.Join("p2", "Ben")
	if _, err := room.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if name, ok := room.PlayerName("p1"); !ok || name != "Ann" {
		t.Fatalf("expected roster name Ann, got %q ok=%v", name, ok)
	}
	if room.PlayerCount() != 2 {
		t.Fatalf("expected 2 players, got %d", room.PlayerCount())
	}

	if _, _, err := room.SubmitAnswer("ghost", "Lyon"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	if advanced, _, err := room.SubmitAnswer("p1", "Lyon"); err != nil || advanced {
		t.Fatalf("first submit should not advance: advanced=%v err=%v", advanced, err)
	}
	if room.AnswerCount() != 1 {
		t.Fatalf("expected 1 pending answer, got %d", room.AnswerCount())
	}

	advanced, options, err := room.SubmitAnswer("p2", "Marseille")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !advanced || len(options) != 3 {
		t.Fatalf("expected auto-advance with 3 options, got advanced=%v options=%v", advanced, options)
	}
	// Answers are spent on the voting transition.
	if room.AnswerCount() != 0 {
		t.Fatalf("expected answers cleared, got %d", room.AnswerCount())
	}
}
