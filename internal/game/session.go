package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/dialogue"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/evidence"
	"github.com/myrjola/murderai/internal/logging"
)

const closedMessage = "Game Over. The case is closed."

// Session is one playthrough of a case.
type Session struct {
	mu sync.Mutex

	id       string
	c        *casefile.Case
	gateway  dialogue.Gateway
	journal  Journal
	rules    Rules
	logger   *slog.Logger
	openedAt time.Time

	round      int
	points     int
	evidence   []ToolResult
	unlocked   []string
	eliminated []string
	status     Status
	logs       []LogEntry
	// lastActive is read without mu so that idle scans never wait for a dialogue call.
	lastActive atomic.Int64
}

// Option configures a Session.
type Option func(*Session)

// WithJournal records the game in j.
func WithJournal(j Journal) Option {
	return func(s *Session) {
		s.journal = j
	}
}

// WithRules overrides DefaultRules.
func WithRules(r Rules) Option {
	return func(s *Session) {
		s.rules = r
	}
}

// New starts a game of c and introduces every character to the gateway.
func New(ctx context.Context, id string, c *casefile.Case, gateway dialogue.Gateway, logger *slog.Logger,
	opts ...Option) *Session {
	now := time.Now()
	s := &Session{
		mu:         sync.Mutex{},
		id:         id,
		c:          c,
		gateway:    gateway,
		journal:    nil,
		rules:      DefaultRules(),
		logger:     logger.With("source", "Session"),
		openedAt:   now,
		round:      1,
		points:     0,
		evidence:   nil,
		unlocked:   nil,
		eliminated: nil,
		status:     StatusActive,
		logs:       nil,
		lastActive: atomic.Int64{},
	}
	s.lastActive.Store(now.UnixNano())
	for _, opt := range opts {
		opt(s)
	}
	s.points = s.rules.StartingPoints
	s.createPersonas()
	if s.journal != nil {
		if err := s.journal.GameOpened(s.logContext(ctx), s.snapshot()); err != nil {
			s.logger.LogAttrs(s.logContext(ctx), slog.LevelError, "journal game opened", errors.SlogError(err))
		}
	}
	return s
}

func (s *Session) createPersonas() {
	v := s.c.Victim
	s.gateway.CreatePersona(dialogue.Persona{
		ID:   DetectivePersonaID,
		Role: dialogue.RoleDetective,
		Context: map[string]string{
			"victim_name":   v.Name,
			"time_of_death": v.TimeOfDeath,
			"location":      v.Location,
		},
	})
	for _, suspect := range s.c.Suspects {
		role := dialogue.RoleWitness
		if suspect.IsMurderer {
			role = dialogue.RoleMurderer
		}
		s.gateway.CreatePersona(dialogue.Persona{
			ID:   suspect.ID,
			Role: role,
			Context: map[string]string{
				"name":          suspect.Name,
				"victim_name":   v.Name,
				"alibi_story":   suspect.AlibiStory,
				"bio":           suspect.Bio,
				"true_location": suspect.TrueLocation,
				"phone_number":  suspect.PhoneNumber,
				"alibi_id":      suspect.AlibiID,
				"method":        s.c.Title,
				"location":      v.Location,
				"motive":        suspect.Motive,
			},
		})
	}
}

func (s *Session) logContext(ctx context.Context) context.Context {
	return logging.WithAttrs(ctx, slog.String("session_id", s.id))
}

func (s *Session) ID() string {
	return s.id
}

// Case returns the case being played. It must not be modified.
func (s *Session) Case() *casefile.Case {
	return s.c
}

// LastActive is the time of the latest player action.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Brief asks the detective persona to summarize the case. It costs nothing.
func (s *Session) Brief(ctx context.Context, question string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.status.Over() {
		return closedMessage
	}
	if strings.TrimSpace(question) == "" {
		question = "Brief me on the case."
	}
	return s.gateway.Respond(s.logContext(ctx), DetectivePersonaID, question)
}

// Question puts a question to a suspect. It never costs points or rounds.
func (s *Session) Question(ctx context.Context, suspectID, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logContext(ctx)
	s.touch()

	if s.status.Over() {
		return closedMessage, nil
	}
	suspect, ok := s.c.Suspect(suspectID)
	if !ok {
		return "", errors.Wrap(ErrUnknownSuspect, "question suspect", slog.String("suspect_id", suspectID))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Wrap(ErrEmptyQuestion, "question suspect", slog.String("suspect_id", suspectID))
	}

	s.log(ctx, SpeakerDetective, fmt.Sprintf("To %s: %s", suspect.Name, text))
	reply := s.gateway.Respond(ctx, suspect.ID, text)
	s.log(ctx, suspect.Name, reply)
	return reply, nil
}

// UseTool runs a forensic query. Points are only deducted when the query produces a finding.
//
// Unless the rules are strict, any positive balance allows a query, so a single point still buys the most expensive
// tool once.
func (s *Session) UseTool(ctx context.Context, call ToolCall) ToolResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = logging.WithAttrs(s.logContext(ctx), slog.String("tool", string(call.Tool())))
	s.touch()

	result := ToolResult{
		Tool:          call.Tool(),
		Args:          call.Args(),
		Cost:          0,
		Finding:       nil,
		Error:         "",
		Hints:         nil,
		NewlyUnlocked: nil,
		Err:           nil,
	}
	if s.status.Over() {
		return result.fail(ErrGameOver, closedMessage)
	}
	if s.points <= 0 || (s.rules.StrictBudget && s.points < call.Tool().Cost()) {
		return result.fail(ErrInsufficientPoints, "Not enough investigation points!")
	}

	finding, unlocks, err := call.resolve(ctx, s.c, s.gateway)
	if err != nil {
		var m *evidence.Miss
		if errors.As(err, &m) {
			result = result.fail(err, m.Reason)
			result.Hints = m.Hints
			s.logger.LogAttrs(ctx, slog.LevelDebug, "tool missed", slog.String("reason", m.Reason))
			return result
		}
		s.logger.LogAttrs(ctx, slog.LevelError, "resolve tool", errors.SlogError(err))
		return result.fail(err, "The lab could not process the request.")
	}

	result.Cost = call.Tool().Cost()
	result.Finding = finding
	s.points -= result.Cost
	for _, id := range unlocks {
		if !slices.Contains(s.unlocked, id) {
			s.unlocked = append(s.unlocked, id)
			result.NewlyUnlocked = append(result.NewlyUnlocked, id)
		}
	}
	s.evidence = append(s.evidence, result)
	s.log(ctx, SpeakerSystem, fmt.Sprintf("Used %s. Cost: %d pts. Result: %s", result.Tool, result.Cost, summarize(finding)))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "used tool", slog.Int("cost", result.Cost), slog.Int("points", s.points))
	return result
}

func (r ToolResult) fail(err error, message string) ToolResult {
	r.Err = err
	r.Error = message
	return r
}

// Accuse names the murderer. A wrong guess eliminates the suspect and, unless it was the last round, grants
// another round and bonus points.
func (s *Session) Accuse(ctx context.Context, suspectID string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.logContext(ctx)
	s.touch()

	if s.status.Over() {
		return Outcome{Result: ResultClosed, Message: closedMessage, Err: ErrGameOver} //nolint:exhaustruct // nothing changed
	}
	suspect, ok := s.c.Suspect(suspectID)
	if !ok {
		return Outcome{ //nolint:exhaustruct // nothing changed
			Result:  ResultInvalid,
			Message: "Choose one of the suspects to accuse.",
			Err:     errors.Wrap(ErrUnknownSuspect, "accuse", slog.String("suspect_id", suspectID)),
		}
	}
	if slices.Contains(s.eliminated, suspect.ID) {
		return Outcome{ //nolint:exhaustruct // nothing changed
			Result:  ResultInvalid,
			Message: suspect.Name + " has already been ruled out.",
			Err:     errors.Wrap(ErrSuspectEliminated, "accuse", slog.String("suspect_id", suspectID)),
		}
	}

	murderer := s.c.Murderer()
	if suspect.IsMurderer {
		s.log(ctx, SpeakerSystem, fmt.Sprintf("Correct accusation: %s. Case solved.", suspect.Name))
		s.close(ctx, StatusWon)
		return Outcome{ //nolint:exhaustruct // terminal
			Result:  ResultWin,
			Message: fmt.Sprintf("CORRECT! %s was the murderer.", murderer.Name),
		}
	}

	s.eliminated = append(s.eliminated, suspect.ID)
	s.log(ctx, SpeakerSystem, fmt.Sprintf("Incorrect accusation: %s. Eliminated.", suspect.Name))
	if s.round >= s.rules.MaxRounds {
		s.close(ctx, StatusLost)
		return Outcome{ //nolint:exhaustruct // terminal
			Result:       ResultLoss,
			Message:      fmt.Sprintf("WRONG. That was your last chance. The killer was %s.", murderer.Name),
			EliminatedID: suspect.ID,
		}
	}

	s.round++
	s.points += s.rules.InnocentBonus
	return Outcome{
		Result:       ResultContinue,
		Message:      fmt.Sprintf("%s is INNOCENT. +%d Points. Try again.", suspect.Name, s.rules.InnocentBonus),
		EliminatedID: suspect.ID,
		NewRound:     s.round,
		NewPoints:    s.points,
		Err:          nil,
	}
}

func (s *Session) close(ctx context.Context, status Status) {
	s.status = status
	s.logger.LogAttrs(ctx, slog.LevelInfo, "game closed", slog.String("status", string(status)),
		slog.Int("round", s.round), slog.Int("points", s.points))
	if s.journal == nil {
		return
	}
	if err := s.journal.GameClosed(ctx, s.id, status, s.round, s.points); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "journal game closed", errors.SlogError(err))
	}
}

func (s *Session) log(ctx context.Context, speaker, message string) {
	entry := LogEntry{Speaker: speaker, Message: message, At: time.Now()}
	s.logs = append(s.logs, entry)
	if s.journal == nil {
		return
	}
	if err := s.journal.EntryLogged(ctx, s.id, len(s.logs), entry); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "journal entry", errors.SlogError(err))
	}
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func summarize(finding any) string {
	b, err := json.Marshal(finding)
	if err != nil {
		return fmt.Sprintf("%+v", finding)
	}
	return string(b)
}
