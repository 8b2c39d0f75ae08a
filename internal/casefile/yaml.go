package casefile

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/myrjola/murderai/internal/errors"
	"gopkg.in/yaml.v3"
)

// footageUnlocksKey is the reserved camera-level key that lists unlocked evidence instead of a clip.
const footageUnlocksKey = "unlocks"

// Parse decodes, normalizes and validates a case document.
func Parse(data []byte) (*Case, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Wrap(ErrInvalidCase, "case document is empty")
	}
	var c Case
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(err, "decode case document")
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// normalize fills in authored omissions.
func (c *Case) normalize() {
	for i := range c.Suspects {
		if c.Suspects[i].AlibiID == "" {
			c.Suspects[i].AlibiID = fmt.Sprintf("ALIBI-%d", 100+i) //nolint:mnd // numbering starts at ALIBI-100
		}
	}
}

// UnmarshalYAML decodes the timestamp mapping while keeping authoring order.
func (h *LocationHistory) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.New("location history must be a mapping", slog.Int("line", value.Line))
	}
	history := make(LocationHistory, 0, len(value.Content)/2) //nolint:mnd // key-value pairs
	for i := 0; i+1 < len(value.Content); i += 2 {
		var ping LocationPing
		if err := value.Content[i+1].Decode(&ping); err != nil {
			return errors.Wrap(err, "decode location ping", slog.String("timestamp", value.Content[i].Value))
		}
		ping.Timestamp = value.Content[i].Value
		history = append(history, ping)
	}
	*h = history
	return nil
}

// UnmarshalYAML decodes the camera mapping while keeping authoring order.
func (f *FootageIndex) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.New("footage data must be a mapping", slog.Int("line", value.Line))
	}
	index := make(FootageIndex, 0, len(value.Content)/2) //nolint:mnd // key-value pairs
	for i := 0; i+1 < len(value.Content); i += 2 {
		var loc FootageLocation
		if err := value.Content[i+1].Decode(&loc); err != nil {
			return errors.Wrap(err, "decode footage location", slog.String("location", value.Content[i].Value))
		}
		loc.Key = value.Content[i].Value
		index = append(index, loc)
	}
	*f = index
	return nil
}

// UnmarshalYAML separates the reserved unlocks key from the clips.
func (l *FootageLocation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.New("footage location must be a mapping", slog.Int("line", value.Line))
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		if key == footageUnlocksKey {
			if err := value.Content[i+1].Decode(&l.Unlocks); err != nil {
				return errors.Wrap(err, "decode footage unlocks")
			}
			continue
		}
		var clip FootageClip
		if err := value.Content[i+1].Decode(&clip); err != nil {
			return errors.Wrap(err, "decode footage clip", slog.String("time_range", key))
		}
		clip.TimeRange = key
		l.Clips = append(l.Clips, clip)
	}
	return nil
}
