package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a code does not match any active room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidCode is returned when a room code is not exactly 4 digits.
	ErrInvalidCode = errors.New("invalid room code")
	// ErrPlayerNotFound is returned when a connection acts before joining a room.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrNotHost is returned when a non-host connection attempts a host action.
	ErrNotHost = errors.New("only the host can perform this action")
	// ErrWrongPhase is returned when an action is invalid for the room's current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrNoQuestions is returned when a room is created with no usable questions,
	// or the host tries to start past the final question.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidName is returned when a display name is empty or too long.
	ErrInvalidName = errors.New("invalid player name")
	// ErrHostCannotJoin keeps the host out of the player roster of its own room.
	ErrHostCannotJoin = errors.New("host cannot join as a player")
	// ErrInvalidAnswer is returned when a submitted answer fails content validation.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrAlreadyVoted is returned on a second vote within the same round.
	ErrAlreadyVoted = errors.New("already voted this round")
	// ErrPackNotFound indicates the question pack could not be loaded.
	ErrPackNotFound = errors.New("question pack not found")
)
