package evidence

import (
	"context"
	"strings"
	"unicode"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/dialogue"
)

// minPhoneDigits is the digit count from which an alibi ID is taken to be a phone number.
const minPhoneDigits = 7

// Voice is the part of the dialogue gateway that alibi calls need.
type Voice interface {
	CreatePersona(p dialogue.Persona)
	Respond(ctx context.Context, personaID string, message string) string
}

// AlibiReport is what the alibi contact said on the phone.
type AlibiReport struct {
	AlibiID     string   `json:"alibi_id"`
	ContactName string   `json:"contact_name"`
	Question    string   `json:"question"`
	Response    string   `json:"response"`
	Confidence  string   `json:"confidence"`
	RedFlags    []string `json:"red_flags,omitempty"`
}

// AlibiPersonaID is the dialogue persona of the contact behind an alibi ID.
func AlibiPersonaID(alibiID string) string {
	return "alibi:" + strings.ToUpper(alibiID)
}

// Alibi calls the contact that vouches for the suspect owning alibiID and asks question.
func Alibi(ctx context.Context, c *casefile.Case, voice Voice, alibiID, question string) (AlibiReport, error) {
	alibiID = strings.TrimSpace(alibiID)
	question = strings.TrimSpace(question)
	if alibiID == "" {
		return AlibiReport{}, miss(ErrMissingArgument, "An alibi ID is required.")
	}
	if looksLikePhoneNumber(alibiID) {
		return AlibiReport{}, miss(ErrPhoneNumberAlibi,
			"Alibis are called by their alibi ID, not by phone number. Ask the suspect for it.")
	}
	if question == "" {
		return AlibiReport{}, miss(ErrMissingArgument, "A question for the alibi contact is required.")
	}

	suspect, ok := c.SuspectByAlibiID(alibiID)
	if !ok {
		return AlibiReport{}, miss(ErrAlibiNotFound, "Alibi ID not found.")
	}
	record, ok := c.Evidence.Alibis[suspect.ID]
	if !ok {
		return AlibiReport{}, miss(ErrAlibiNotFound, "Nobody answers. No contact is on file for "+suspect.AlibiID+".")
	}

	contactName := record.ContactName
	if contactName == "" {
		contactName = "Unknown"
	}
	personaID := AlibiPersonaID(suspect.AlibiID)
	voice.CreatePersona(dialogue.Persona{
		ID:   personaID,
		Role: dialogue.RoleAlibiAgent,
		Context: map[string]string{
			"contact_name": contactName,
			"contact":      record.Contact,
			"suspect_name": suspect.Name,
			"story":        suspect.AlibiStory,
			"truth":        record.Truth,
		},
	})

	report := AlibiReport{
		AlibiID:     suspect.AlibiID,
		ContactName: contactName,
		Question:    question,
		Response:    voice.Respond(ctx, personaID, question),
		Confidence:  "High",
		RedFlags:    nil,
	}
	if !record.Verifiable {
		report.Confidence = "Uncertain"
		report.RedFlags = []string{"Hesitant response", "No details provided"}
	}
	return report, nil
}

func looksLikePhoneNumber(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return len(digits(s)) >= minPhoneDigits
}
