package detective

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/myrjola/murderai/internal/game"
)

const (
	ActionUseTool = "use_tool"
	ActionChat    = "chat"
	ActionAccuse  = "accuse"
)

// DefaultFallbackCamera is inspected when a reply cannot be understood.
const DefaultFallbackCamera = "10th_floor_camera"

// Action is the decision of one turn.
type Action struct {
	Thought   string         `json:"thought"`
	Action    string         `json:"action"`
	ToolName  string         `json:"tool_name,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	SuspectID string         `json:"suspect_id,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// StringArgs flattens Args for game.ParseToolCall. Models sometimes send numbers where strings are expected.
func (a Action) StringArgs() map[string]string {
	out := make(map[string]string, len(a.Args))
	for k, v := range a.Args {
		switch v := v.(type) {
		case nil:
		case string:
			out[k] = v
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// Decoder turns a free-text reply into an action. It must always return a usable action.
type Decoder interface {
	Decode(reply string) Action
}

// JSONDecoder takes the first JSON object in the reply that describes a known action, ignoring any text or code
// fences around it.
type JSONDecoder struct {
	FallbackCamera string
}

func (d JSONDecoder) Decode(reply string) Action {
	for i := strings.IndexByte(reply, '{'); i >= 0; {
		var a Action
		if err := json.NewDecoder(strings.NewReader(reply[i:])).Decode(&a); err == nil && known(a.Action) {
			return a
		}
		next := strings.IndexByte(reply[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return d.Fallback()
}

// Fallback inspects a camera.
func (d JSONDecoder) Fallback() Action {
	camera := d.FallbackCamera
	if camera == "" {
		camera = DefaultFallbackCamera
	}
	return Action{
		Thought:   "I am confused. I will check the footage.",
		Action:    ActionUseTool,
		ToolName:  string(game.ToolFootage),
		Args:      map[string]any{"location": camera},
		SuspectID: "",
		Message:   "",
	}
}

func known(action string) bool {
	switch action {
	case ActionUseTool, ActionChat, ActionAccuse:
		return true
	}
	return false
}
