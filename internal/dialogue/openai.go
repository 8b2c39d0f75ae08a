package dialogue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/myrjola/murderai/internal/config"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/sashabaranov/go-openai"
)

const maxTokens = 512

// OpenAI keeps one chat history per persona and sends the whole history with every request.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger

	mu    sync.Mutex
	chats map[string]*chat
}

type chat struct {
	mu       sync.Mutex
	messages []openai.ChatCompletionMessage
}

func NewOpenAI(cfg config.OpenAI, logger *slog.Logger) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.With("source", "OpenAI"),
		mu:     sync.Mutex{},
		chats:  make(map[string]*chat),
	}
}

func (o *OpenAI) CreatePersona(p Persona) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.chats[p.ID]; ok {
		return
	}
	o.chats[p.ID] = &chat{
		mu: sync.Mutex{},
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(p)}, //nolint:exhaustruct // text only
		},
	}
}

func (o *OpenAI) Respond(ctx context.Context, personaID string, message string) string {
	o.mu.Lock()
	c, ok := o.chats[personaID]
	o.mu.Unlock()
	if !ok {
		o.logger.LogAttrs(ctx, slog.LevelError, "persona not found", slog.String("persona_id", personaID))
		return unavailablePrefix + " Nobody answers."
	}

	// Turns of the same persona are serialized so that the history stays in order.
	c.mu.Lock()
	defer c.mu.Unlock()
	userMessage := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message} //nolint:exhaustruct // text only
	messages := append(append([]openai.ChatCompletionMessage{}, c.messages...), userMessage)
	reply, err := o.complete(ctx, messages)
	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "persona reply failed",
			slog.String("persona_id", personaID), errors.SlogError(err))
		return unavailablePrefix + " The line goes quiet. Try again in a moment."
	}
	c.messages = append(messages,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}) //nolint:exhaustruct // text only
	return reply
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) string {
	reply, err := o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt}, //nolint:exhaustruct // text only
	})
	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "completion failed", errors.SlogError(err))
		return unavailablePrefix + " No reasoning available."
	}
	return reply
}

func (o *OpenAI) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	completion, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("model", o.model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion has no choices", slog.String("model", o.model))
	}
	return completion.Choices[0].Message.Content, nil
}
