package game

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/evidence"
)

// Tool names a forensic query.
type Tool string

const (
	ToolLocation Tool = "get_location"
	ToolFootage  Tool = "get_footage"
	ToolDNA      Tool = "get_dna_test"
	ToolAlibi    Tool = "call_alibi"
)

// Tools lists every tool in the order they are presented to players.
var Tools = []Tool{ToolLocation, ToolFootage, ToolDNA, ToolAlibi}

var toolCosts = map[Tool]int{
	ToolLocation: 2, //nolint:mnd // game balance
	ToolFootage:  3, //nolint:mnd // game balance
	ToolDNA:      4, //nolint:mnd // game balance
	ToolAlibi:    1,
}

// Cost is the number of points a successful use deducts.
func (t Tool) Cost() int {
	return toolCosts[t]
}

// ToolCall is one of LocationQuery, FootageQuery, DNAQuery or AlibiQuery.
type ToolCall interface {
	Tool() Tool
	// Args are the arguments as the player gave them. Empty optional arguments are left out.
	Args() map[string]string
	resolve(ctx context.Context, c *casefile.Case, voice evidence.Voice) (finding any, unlocks []string, err error)
}

type LocationQuery struct {
	PhoneNumber string
	// Timestamp is optional. Without it the whole history is returned.
	Timestamp string
}

func (LocationQuery) Tool() Tool { return ToolLocation }

func (q LocationQuery) Args() map[string]string {
	return args("phone_number", q.PhoneNumber, "timestamp", q.Timestamp)
}

func (q LocationQuery) resolve(_ context.Context, c *casefile.Case, _ evidence.Voice) (any, []string, error) {
	report, err := evidence.Locate(c, q.PhoneNumber, q.Timestamp)
	if err != nil {
		return nil, nil, err
	}
	return report, nil, nil
}

type FootageQuery struct {
	Location string
	// TimeRange is optional. Without it the first clip of the camera is returned.
	TimeRange string
}

func (FootageQuery) Tool() Tool { return ToolFootage }

func (q FootageQuery) Args() map[string]string {
	return args("location", q.Location, "time_range", q.TimeRange)
}

func (q FootageQuery) resolve(_ context.Context, c *casefile.Case, _ evidence.Voice) (any, []string, error) {
	report, err := evidence.Footage(c, q.Location, q.TimeRange)
	if err != nil {
		return nil, nil, err
	}
	return report, report.Unlocks, nil
}

type DNAQuery struct {
	EvidenceID string
}

func (DNAQuery) Tool() Tool { return ToolDNA }

func (q DNAQuery) Args() map[string]string {
	return args("evidence_id", q.EvidenceID)
}

func (q DNAQuery) resolve(_ context.Context, c *casefile.Case, _ evidence.Voice) (any, []string, error) {
	report, err := evidence.DNA(c, q.EvidenceID)
	if err != nil {
		return nil, nil, err
	}
	return report, nil, nil
}

type AlibiQuery struct {
	AlibiID  string
	Question string
}

func (AlibiQuery) Tool() Tool { return ToolAlibi }

func (q AlibiQuery) Args() map[string]string {
	return args("alibi_id", q.AlibiID, "question", q.Question)
}

func (q AlibiQuery) resolve(ctx context.Context, c *casefile.Case, voice evidence.Voice) (any, []string, error) {
	report, err := evidence.Alibi(ctx, c, voice, q.AlibiID, q.Question)
	if err != nil {
		return nil, nil, err
	}
	return report, nil, nil
}

func args(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2) //nolint:mnd // key-value pairs
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			m[kv[i]] = kv[i+1]
		}
	}
	return m
}

// ParseToolCall builds a typed call from loosely typed input such as a form, a JSON body or a model's reply.
// Missing arguments are not checked here; the resolver reports them.
func ParseToolCall(name string, in map[string]string) (ToolCall, error) { //nolint:ireturn // tagged union
	get := func(key string) string {
		return strings.TrimSpace(in[key])
	}
	switch Tool(strings.TrimSpace(name)) {
	case ToolLocation:
		return LocationQuery{PhoneNumber: get("phone_number"), Timestamp: get("timestamp")}, nil
	case ToolFootage:
		return FootageQuery{Location: get("location"), TimeRange: get("time_range")}, nil
	case ToolDNA:
		return DNAQuery{EvidenceID: get("evidence_id")}, nil
	case ToolAlibi:
		alibiID := get("alibi_id")
		if alibiID == "" {
			// Players used to dial the contact directly. The resolver explains why that does not work.
			alibiID = get("phone_number")
		}
		return AlibiQuery{AlibiID: alibiID, Question: get("question")}, nil
	}
	return nil, errors.Wrap(ErrUnknownTool, "parse tool call", slog.String("tool", name))
}
