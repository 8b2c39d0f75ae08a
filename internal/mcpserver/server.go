// Package mcpserver exposes the game engine as Model Context Protocol tools so that an external agent can play.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/myrjola/murderai/internal/engine"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
	"github.com/myrjola/murderai/internal/logging"
)

// Server wraps the MCP server and the engine it drives.
type Server struct {
	MCPServer *mcp.Server
	engine    *engine.Engine
	logger    *slog.Logger
}

func New(e *engine.Engine, version string, logger *slog.Logger) *Server {
	s := &Server{
		MCPServer: mcp.NewServer(&mcp.Implementation{Name: "murderai", Version: version}, nil), //nolint:exhaustruct // defaults
		engine:    e,
		logger:    logger.With("source", "MCPServer"),
	}
	s.registerTools()
	return s
}

// Run serves over stdin and stdout until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.MCPServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return errors.Wrap(err, "run mcp server")
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        "start_game",
		Description: "Start a new murder mystery. Returns the session ID, the victim and the suspects.",
	}, s.handleStartGame)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        "get_session",
		Description: "Get the current state of a game: round, points, evidence and transcript.",
	}, s.handleGetSession)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        "question_suspect",
		Description: "Ask a suspect a question. Free of charge.",
	}, s.handleQuestionSuspect)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        string(game.ToolLocation),
		Description: "Trace a phone's location history. Costs 2 points.",
	}, s.handleGetLocation)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        string(game.ToolFootage),
		Description: "Review security camera footage at a location. Costs 3 points.",
	}, s.handleGetFootage)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        string(game.ToolDNA),
		Description: "Run a DNA test on a piece of evidence. Costs 4 points.",
	}, s.handleGetDNA)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        string(game.ToolAlibi),
		Description: "Call the contact who can confirm a suspect's alibi. Costs 1 point.",
	}, s.handleCallAlibi)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        "accuse",
		Description: "Accuse a suspect of the murder. A wrong accusation costs a round.",
	}, s.handleAccuse)
	mcp.AddTool(s.MCPServer, &mcp.Tool{ //nolint:exhaustruct // schema is inferred
		Name:        "ai_step",
		Description: "Let the built-in detective play one turn.",
	}, s.handleAIStep)
}

type startGameInput struct {
	Difficulty string `json:"difficulty,omitempty" jsonschema:"easy, medium or hard (default medium)"`
}

type sessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_game"`
}

type questionInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_game"`
	SuspectID string `json:"suspect_id" jsonschema:"suspect to question, e.g. suspect_1"`
	Question  string `json:"question" jsonschema:"what to ask"`
}

type locationInput struct {
	SessionID   string `json:"session_id" jsonschema:"session ID from start_game"`
	PhoneNumber string `json:"phone_number" jsonschema:"suspect phone number in any format"`
	Timestamp   string `json:"timestamp,omitempty" jsonschema:"exact timestamp, omit for the full history"`
}

type footageInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_game"`
	Location  string `json:"location" jsonschema:"camera location"`
	TimeRange string `json:"time_range,omitempty" jsonschema:"clip time range, omit for the first clip"`
}

type dnaInput struct {
	SessionID  string `json:"session_id" jsonschema:"session ID from start_game"`
	EvidenceID string `json:"evidence_id" jsonschema:"evidence sample ID"`
}

type alibiInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_game"`
	AlibiID   string `json:"alibi_id" jsonschema:"alibi ID of the suspect, e.g. ALIBI-101"`
	Question  string `json:"question" jsonschema:"what to ask the contact"`
}

type accuseInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from start_game"`
	SuspectID string `json:"suspect_id" jsonschema:"suspect to accuse"`
}

type questionOutput struct {
	SuspectID string `json:"suspect_id"`
	Response  string `json:"response"`
}

func (s *Server) handleStartGame(ctx context.Context, _ *mcp.CallToolRequest, in startGameInput) (
	*mcp.CallToolResult, any, error) {
	snapshot, err := s.engine.StartGame(ctx, in.Difficulty)
	if err != nil {
		return s.fail(ctx, "start_game", err)
	}
	return s.reply(ctx, snapshot)
}

func (s *Server) handleGetSession(ctx context.Context, _ *mcp.CallToolRequest, in sessionInput) (
	*mcp.CallToolResult, any, error) {
	snapshot, err := s.engine.GetSession(in.SessionID)
	if err != nil {
		return s.fail(ctx, "get_session", err)
	}
	return s.reply(ctx, snapshot)
}

func (s *Server) handleQuestionSuspect(ctx context.Context, _ *mcp.CallToolRequest, in questionInput) (
	*mcp.CallToolResult, any, error) {
	response, err := s.engine.QuestionSuspect(ctx, in.SessionID, in.SuspectID, in.Question)
	if err != nil {
		return s.fail(ctx, "question_suspect", err)
	}
	return s.reply(ctx, questionOutput{SuspectID: in.SuspectID, Response: response})
}

func (s *Server) handleGetLocation(ctx context.Context, _ *mcp.CallToolRequest, in locationInput) (
	*mcp.CallToolResult, any, error) {
	return s.useTool(ctx, in.SessionID, game.LocationQuery{PhoneNumber: in.PhoneNumber, Timestamp: in.Timestamp})
}

func (s *Server) handleGetFootage(ctx context.Context, _ *mcp.CallToolRequest, in footageInput) (
	*mcp.CallToolResult, any, error) {
	return s.useTool(ctx, in.SessionID, game.FootageQuery{Location: in.Location, TimeRange: in.TimeRange})
}

func (s *Server) handleGetDNA(ctx context.Context, _ *mcp.CallToolRequest, in dnaInput) (
	*mcp.CallToolResult, any, error) {
	return s.useTool(ctx, in.SessionID, game.DNAQuery{EvidenceID: in.EvidenceID})
}

func (s *Server) handleCallAlibi(ctx context.Context, _ *mcp.CallToolRequest, in alibiInput) (
	*mcp.CallToolResult, any, error) {
	return s.useTool(ctx, in.SessionID, game.AlibiQuery{AlibiID: in.AlibiID, Question: in.Question})
}

// useTool reports misses and an exhausted budget as a normal result so that the agent can read the hints.
func (s *Server) useTool(ctx context.Context, sessionID string, call game.ToolCall) (*mcp.CallToolResult, any, error) {
	result, err := s.engine.UseTool(ctx, sessionID, string(call.Tool()), call.Args())
	if err != nil {
		return s.fail(ctx, string(call.Tool()), err)
	}
	return s.reply(ctx, result)
}

func (s *Server) handleAccuse(ctx context.Context, _ *mcp.CallToolRequest, in accuseInput) (
	*mcp.CallToolResult, any, error) {
	outcome, err := s.engine.Accuse(ctx, in.SessionID, in.SuspectID)
	if err != nil {
		return s.fail(ctx, "accuse", err)
	}
	return s.reply(ctx, outcome)
}

func (s *Server) handleAIStep(ctx context.Context, _ *mcp.CallToolRequest, in sessionInput) (
	*mcp.CallToolResult, any, error) {
	turn, err := s.engine.AutoStep(ctx, in.SessionID)
	if err != nil {
		return s.fail(ctx, "ai_step", err)
	}
	return s.reply(ctx, turn)
}

func (s *Server) reply(ctx context.Context, v any) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return s.fail(ctx, "encode result", errors.Wrap(err, "marshal tool result"))
	}
	return &mcp.CallToolResult{ //nolint:exhaustruct // text only
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}}, //nolint:exhaustruct // text only
	}, nil, nil
}

// fail turns err into a tool error that the agent can see and recover from.
func (s *Server) fail(ctx context.Context, tool string, err error) (*mcp.CallToolResult, any, error) {
	level := slog.LevelInfo
	if !errors.Is(err, engine.ErrSessionNotFound) && !errors.Is(err, game.ErrUnknownSuspect) &&
		!errors.Is(err, game.ErrEmptyQuestion) {
		level = slog.LevelError
	}
	s.logger.LogAttrs(logging.WithAttrs(ctx, slog.String("tool", tool)), level, "tool call failed", errors.SlogError(err))
	return &mcp.CallToolResult{ //nolint:exhaustruct // text only
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}}, //nolint:exhaustruct // text only
	}, nil, nil
}
