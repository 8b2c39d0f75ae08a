package dialogue

import (
	"context"
	"strconv"
	"sync"
)

// Offline echoes messages back. It is used when no API key is configured and in tests.
type Offline struct {
	mu       sync.Mutex
	personas map[string]Persona
}

func NewOffline() *Offline {
	return &Offline{
		mu:       sync.Mutex{},
		personas: make(map[string]Persona),
	}
}

func (o *Offline) CreatePersona(p Persona) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.personas[p.ID]; !ok {
		o.personas[p.ID] = p
	}
}

// Persona returns a registered persona.
func (o *Offline) Persona(id string) (Persona, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.personas[id]
	return p, ok
}

func (o *Offline) Respond(_ context.Context, personaID string, message string) string {
	if _, ok := o.Persona(personaID); !ok {
		return unavailablePrefix + " Nobody answers."
	}
	return "[MOCK] I received: " + message + ". (Set OPENAI_API_KEY to get real responses)"
}

func (o *Offline) Complete(_ context.Context, prompt string) string {
	return "[MOCK] I received a prompt of " + strconv.Itoa(len(prompt)) + " characters. (Set OPENAI_API_KEY to get real responses)"
}
