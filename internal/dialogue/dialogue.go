// Package dialogue voices the characters of a case. The game only depends on the Gateway interface; OpenAI talks
// to a chat completion API and Offline is a deterministic stand-in for running without credentials.
package dialogue

import (
	"bytes"
	"context"
	"embed"
	"log/slog"
	"text/template"

	"github.com/myrjola/murderai/internal/config"
)

// Role selects the system prompt of a persona.
type Role string

const (
	RoleMurderer   Role = "murderer"
	RoleWitness    Role = "witness"
	RoleDetective  Role = "detective"
	RoleAlibiAgent Role = "alibi_agent"
)

// Persona is a conversational identity. Context fills the role's prompt template.
type Persona struct {
	ID      string
	Role    Role
	Context map[string]string
}

// Gateway produces replies for personas.
//
// Implementations never fail: when no reply can be generated they return a clearly marked fallback string so that
// the game keeps going.
type Gateway interface {
	// CreatePersona registers p. Registering an existing ID again is a no-op that keeps the conversation history.
	CreatePersona(p Persona)
	// Respond continues the conversation of the persona with the given ID.
	Respond(ctx context.Context, personaID string, message string) string
	// Complete answers a one-off prompt without any persona or memory.
	Complete(ctx context.Context, prompt string) string
}

const unavailablePrefix = "[Dialogue unavailable]"

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("").Option("missingkey=error").ParseFS(promptFS, "prompts/*.tmpl"))

// SystemPrompt renders the instructions for p. When a context field is missing the raw template is returned.
func SystemPrompt(p Persona) string {
	name := string(p.Role) + ".tmpl"
	t := prompts.Lookup(name)
	if t == nil {
		t = prompts.Lookup(string(RoleWitness) + ".tmpl")
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, p.Context); err != nil {
		raw, _ := promptFS.ReadFile("prompts/" + t.Name())
		return string(raw)
	}
	return buf.String()
}

// New returns the OpenAI gateway, or the offline gateway when no API key is configured.
func New(cfg config.OpenAI, logger *slog.Logger) Gateway { //nolint:ireturn // callers pick the implementation at runtime
	if cfg.Offline() {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "no OpenAI API key, dialogue runs in offline mode")
		return NewOffline()
	}
	return NewOpenAI(cfg, logger)
}
