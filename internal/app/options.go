package app

import (
	"math/rand"
	"sort"
	"strings"
	"unicode"

	"party-trivia-service/internal/domain"
)

const (
	votePoints      = 10
	leaderboardSize = 3

	maxQuestions = 100
	maxNameLen   = 30
	minAnswerLen = 2
	maxAnswerLen = 500
)

// buildVotingOptions assembles the candidate set for one voting round:
// the distinct submitted answers plus the correct answer, exactly one entry
// flagged correct, Fisher-Yates shuffled so position leaks nothing.
func buildVotingOptions(answers []string, correct string) []domain.VotingOption {
	options := make([]domain.VotingOption, 0, len(answers)+1)
	seen := make(map[string]struct{}, len(answers)+1)
	seen[correct] = struct{}{}
	for _, a := range answers {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		options = append(options, domain.VotingOption{Answer: a})
	}
	options = append(options, domain.VotingOption{Answer: correct, Correct: true})

	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

func sortLeaderboard(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

// filterQuestions drops entries whose prompt or answer is blank after
// trimming. Creation is rejected upstream when nothing survives.
func filterQuestions(questions []domain.Question) []domain.Question {
	valid := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		text := strings.TrimSpace(q.Text)
		answer := strings.TrimSpace(q.CorrectAnswer)
		if text == "" || answer == "" {
			continue
		}
		valid = append(valid, domain.Question{
			Text:          text,
			CorrectAnswer: answer,
			ImageURL:      strings.TrimSpace(q.ImageURL),
		})
	}
	return valid
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

// validateAnswer enforces the content rules that keep trivial noise out of
// the shared answer pool: minimum length, not purely numeric, not a single
// repeated character.
func validateAnswer(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if len(answer) < minAnswerLen || len(answer) > maxAnswerLen {
		return "", domain.ErrInvalidAnswer
	}
	if allDigits(answer) {
		return "", domain.ErrInvalidAnswer
	}
	if singleRune(answer) {
		return "", domain.ErrInvalidAnswer
	}
	return answer, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func singleRune(s string) bool {
	var first rune
	for i, r := range s {
		if i == 0 {
			first = r
			continue
		}
		if r != first {
			return false
		}
	}
	return true
}

// validCode reports whether a client-supplied code is exactly 4 ASCII digits.
// Malformed codes are a distinct error from unknown ones.
func validCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
