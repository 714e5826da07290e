package domain

// Phase is a room's position in the game state machine.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseQuestion  Phase = "question"
	PhaseVoting    Phase = "voting"
	PhaseRevealing Phase = "revealing"
	PhaseComplete  Phase = "complete"
)

// Question is one prompt/answer pair, fixed at room creation.
type Question struct {
	Text          string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

// Pack is a curated question set that rooms can be created from.
type Pack struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// VotingOption is one candidate answer shown during the voting phase.
// Order within the broadcast slice is shuffled so position carries no
// signal about which entry is correct.
type VotingOption struct {
	Answer  string `json:"answer"`
	Correct bool   `json:"isCorrect"`
}

// LeaderboardEntry is one row of the top-of-room scoreboard.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoundScore is the score a single player gained during one round.
type RoundScore struct {
	Name   string `json:"name"`
	Gained int    `json:"gained"`
}
