// Package game implements one playthrough of a case: the points budget, the rounds, the forensic tools and the
// accusation protocol.
//
// A Session is safe for concurrent use. Actions on one session are serialized, including the dialogue calls they
// make, so at most one action is in flight per game.
package game

import (
	"context"
	"time"

	"github.com/myrjola/murderai/internal/errors"
)

// Rules are the balance parameters of a game.
type Rules struct {
	MaxRounds      int
	StartingPoints int
	// InnocentBonus is granted for continuing after a wrong accusation.
	InnocentBonus int
	// StrictBudget refuses tools that cost more than the remaining points. By default any positive balance is
	// enough.
	StrictBudget bool
}

func DefaultRules() Rules {
	return Rules{
		MaxRounds:      3,  //nolint:mnd // game balance
		StartingPoints: 10, //nolint:mnd // game balance
		InnocentBonus:  5,  //nolint:mnd // game balance
		StrictBudget:   false,
	}
}

const (
	SpeakerDetective = "Detective"
	SpeakerSystem    = "System"
	// DetectivePersonaID is the persona that briefs the player on the case.
	DetectivePersonaID = "detective"
)

type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusLost   Status = "lost"
)

// Over reports whether the game has reached a verdict.
func (s Status) Over() bool {
	return s != StatusActive
}

var (
	ErrGameOver           = errors.NewSentinel("game over")
	ErrInsufficientPoints = errors.NewSentinel("not enough investigation points")
	ErrUnknownTool        = errors.NewSentinel("unknown tool")
	ErrUnknownSuspect     = errors.NewSentinel("unknown suspect")
	ErrSuspectEliminated  = errors.NewSentinel("suspect already eliminated")
	ErrEmptyQuestion      = errors.NewSentinel("empty question")
)

// LogEntry is one line of the game transcript.
type LogEntry struct {
	Speaker string    `json:"speaker"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ToolResult is the outcome of a tool use. A failed use has Err set and cost nothing.
type ToolResult struct {
	Tool Tool              `json:"tool"`
	Args map[string]string `json:"args"`
	// Cost is the number of points deducted.
	Cost    int    `json:"cost"`
	Finding any    `json:"finding,omitempty"`
	Error   string `json:"error,omitempty"`
	// Hints lists valid alternatives after a miss.
	Hints []string `json:"hints,omitempty"`
	// NewlyUnlocked lists evidence IDs that this use made known for the first time.
	NewlyUnlocked []string `json:"newly_unlocked,omitempty"`
	Err           error    `json:"-"`
}

// OK reports whether the tool produced a finding.
func (r ToolResult) OK() bool {
	return r.Err == nil
}

type Result string

const (
	ResultWin      Result = "win"
	ResultLoss     Result = "loss"
	ResultContinue Result = "continue"
	// ResultInvalid is an accusation that was refused without side effects.
	ResultInvalid Result = "invalid"
	// ResultClosed is an accusation after the game was already decided.
	ResultClosed Result = "closed"
)

// Outcome is the reply to an accusation.
type Outcome struct {
	Result       Result `json:"result"`
	Message      string `json:"message"`
	EliminatedID string `json:"eliminated_id,omitempty"`
	NewRound     int    `json:"new_round,omitempty"`
	NewPoints    int    `json:"new_points,omitempty"`
	Err          error  `json:"-"`
}

// Journal records games as they are played. Failures are logged and never affect the game.
type Journal interface {
	GameOpened(ctx context.Context, snapshot Snapshot) error
	EntryLogged(ctx context.Context, sessionID string, seq int, entry LogEntry) error
	GameClosed(ctx context.Context, sessionID string, status Status, round int, points int) error
}
