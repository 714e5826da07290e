package app

import (
	"sync"

	"party-trivia-service/internal/domain"
)

// Room is the aggregate root of one game session. All state transitions go
// through its methods, each of which applies its full read-check-mutate
// sequence under the room lock so concurrent intents serialize cleanly.
type Room struct {
	code   string
	hostID string

	mu            sync.RWMutex
	questions     []domain.Question
	current       int
	phase         domain.Phase
	players       map[string]*playerState
	order         []string // join order of player connection IDs
	votingOptions []domain.VotingOption
}

// playerState is the single per-player record: roster name, current-round
// answer, vote flag, round gain, and cumulative score.
type playerState struct {
	name     string
	answer   string
	answered bool
	voted    bool
	gained   int
	score    int
}

// NewRoom is exported for store implementations that mint rooms.
func NewRoom(code, hostID string, questions []domain.Question) *Room {
	return &Room{
		code:      code,
		hostID:    hostID,
		questions: questions,
		phase:     domain.PhaseWaiting,
		players:   make(map[string]*playerState),
	}
}

func (r *Room) Code() string { return r.code }

func (r *Room) HostID() string { return r.hostID }

func (r *Room) Phase() domain.Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// MemberIDs returns the host plus every player connection ID.
func (r *Room) MemberIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.order)+1)
	ids = append(ids, r.hostID)
	ids = append(ids, r.order...)
	return ids
}

// QuestionView is the broadcast form of the current question.
type QuestionView struct {
	Question       string `json:"question"`
	QuestionIndex  int    `json:"questionIndex"` // 1-based
	TotalQuestions int    `json:"totalQuestions"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

// ResultsView is the broadcast form of a reveal.
type ResultsView struct {
	CorrectAnswer string                    `json:"correctAnswer"`
	ImageURL      string                    `json:"imageUrl,omitempty"`
	Scores        []domain.RoundScore       `json:"scores"`
	Leaderboard   []domain.LeaderboardEntry `json:"leaderboard"`
}

// JoinResult carries everything the orchestrator needs to notify the joiner
// and the rest of the room, captured atomically with the roster mutation.
type JoinResult struct {
	Players  []string
	Question *QuestionView        // set when joining mid-question
	Options  []domain.VotingOption // set when joining mid-vote
}

// Join adds a player to the roster. A rejoining connection just has its name
// refreshed. The returned snapshot reflects the phase at join time so a late
// joiner can be reconciled with the live round.
func (r *Room) Join(connID, name string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[connID]; ok {
		p.name = name
	} else {
		r.players[connID] = &playerState{name: name}
		r.order = append(r.order, connID)
	}

	res := JoinResult{Players: r.rosterLocked()}
	switch r.phase {
	case domain.PhaseQuestion:
		q := r.questionViewLocked()
		res.Question = &q
	case domain.PhaseVoting:
		// Replay the snapshot taken at the voting transition, never a reshuffle.
		res.Options = append([]domain.VotingOption(nil), r.votingOptions...)
	}
	return res
}

// LeaveResult reports the aftermath of a connection dropping out.
type LeaveResult struct {
	WasMember bool
	Players   []string
	Advanced  bool
	Options   []domain.VotingOption
}

// Leave removes a player and purges their pending answer. Losing the last
// holdout during the question phase can complete the round, so the
// auto-advance condition is re-checked here.
func (r *Room) Leave(connID string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[connID]; !ok {
		return LeaveResult{}
	}
	delete(r.players, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	res := LeaveResult{WasMember: true, Players: r.rosterLocked()}
	if r.phase == domain.PhaseQuestion && r.allAnsweredLocked() {
		res.Advanced = true
		res.Options = r.startVotingLocked()
	}
	return res
}

// PlayerName reports the roster name for a connection.
func (r *Room) PlayerName(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[connID]
	if !ok {
		return "", false
	}
	return p.name, true
}

// PlayerCount counts non-host players.
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// AnswerCount counts players with a pending answer this round.
func (r *Room) AnswerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.players {
		if p.answered {
			n++
		}
	}
	return n
}

// SubmitAnswer records a player's answer for the current round. When the
// submission completes the roster (every non-host player has answered) the
// room advances to voting in the same critical section, so the transition
// fires exactly once no matter how submissions interleave.
func (r *Room) SubmitAnswer(connID, answer string) (advanced bool, options []domain.VotingOption, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != domain.PhaseQuestion {
		return false, nil, domain.ErrWrongPhase
	}
	p, ok := r.players[connID]
	if !ok {
		return false, nil, domain.ErrPlayerNotFound
	}
	p.answer = answer
	p.answered = true

	if r.allAnsweredLocked() {
		return true, r.startVotingLocked(), nil
	}
	return false, nil, nil
}

// CastVote scores a vote against the current question's correct answer.
// Exact match credits the voter +10; each connection votes once per round.
func (r *Room) CastVote(connID, selected string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != domain.PhaseVoting {
		return domain.ErrWrongPhase
	}
	p, ok := r.players[connID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if p.voted {
		return domain.ErrAlreadyVoted
	}
	p.voted = true
	if selected == r.questions[r.current].CorrectAnswer {
		p.score += votePoints
		p.gained += votePoints
	}
	return nil
}

// Start begins the first round. Valid only from the waiting phase.
func (r *Room) Start() (QuestionView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != domain.PhaseWaiting {
		return QuestionView{}, domain.ErrWrongPhase
	}
	if r.current >= len(r.questions) {
		return QuestionView{}, domain.ErrNoQuestions
	}
	r.beginQuestionLocked()
	return r.questionViewLocked(), nil
}

// ShowVoting is the explicit host path to the voting phase.
func (r *Room) ShowVoting() ([]domain.VotingOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != domain.PhaseQuestion {
		return nil, domain.ErrWrongPhase
	}
	return r.startVotingLocked(), nil
}

// Reveal closes the voting round and returns the correct answer, per-round
// gains, and the top-of-room leaderboard.
func (r *Room) Reveal() (ResultsView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != domain.PhaseVoting {
		return ResultsView{}, domain.ErrWrongPhase
	}
	r.phase = domain.PhaseRevealing

	q := r.questions[r.current]
	scores := make([]domain.RoundScore, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		scores = append(scores, domain.RoundScore{Name: p.name, Gained: p.gained})
	}
	return ResultsView{
		CorrectAnswer: q.CorrectAnswer,
		ImageURL:      q.ImageURL,
		Scores:        scores,
		Leaderboard:   r.leaderboardLocked(),
	}, nil
}

// Next advances to the following question, or completes the game when none
// remain. Valid only from the revealing phase.
func (r *Room) Next() (complete bool, view QuestionView, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != domain.PhaseRevealing {
		return false, QuestionView{}, domain.ErrWrongPhase
	}
	if r.current+1 >= len(r.questions) {
		r.phase = domain.PhaseComplete
		return true, QuestionView{}, nil
	}
	r.current++
	r.beginQuestionLocked()
	return false, r.questionViewLocked(), nil
}

// Leaderboard returns the top entries by cumulative score.
func (r *Room) Leaderboard() []domain.LeaderboardEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.leaderboardLocked()
}

// CurrentQuestion exposes the live question view for reconciliation.
func (r *Room) CurrentQuestion() (QuestionView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.phase != domain.PhaseQuestion {
		return QuestionView{}, false
	}
	return r.questionViewLocked(), true
}

func (r *Room) beginQuestionLocked() {
	r.phase = domain.PhaseQuestion
	r.votingOptions = nil
	for _, p := range r.players {
		p.answer = ""
		p.answered = false
		p.voted = false
		p.gained = 0
	}
}

// startVotingLocked builds and snapshots the shuffled option set, clears the
// spent answers, and flips the phase. Shared by the explicit host action and
// the all-answered auto-advance.
func (r *Room) startVotingLocked() []domain.VotingOption {
	answers := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; p.answered {
			answers = append(answers, p.answer)
		}
	}
	r.votingOptions = buildVotingOptions(answers, r.questions[r.current].CorrectAnswer)
	for _, p := range r.players {
		p.answer = ""
		p.answered = false
	}
	r.phase = domain.PhaseVoting
	return append([]domain.VotingOption(nil), r.votingOptions...)
}

func (r *Room) allAnsweredLocked() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.answered {
			return false
		}
	}
	return true
}

func (r *Room) rosterLocked() []string {
	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		names = append(names, r.players[id].name)
	}
	return names
}

func (r *Room) questionViewLocked() QuestionView {
	q := r.questions[r.current]
	return QuestionView{
		Question:       q.Text,
		QuestionIndex:  r.current + 1,
		TotalQuestions: len(r.questions),
		ImageURL:       q.ImageURL,
	}
}

func (r *Room) leaderboardLocked() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		entries = append(entries, domain.LeaderboardEntry{Name: p.name, Score: p.score})
	}
	// Stable sort keeps join order among ties, which makes tests deterministic.
	sortLeaderboard(entries)
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	return entries
}
