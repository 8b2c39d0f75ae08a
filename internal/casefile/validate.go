package casefile

import (
	"log/slog"
	"strings"

	"github.com/myrjola/murderai/internal/errors"
)

var ErrInvalidCase = errors.NewSentinel("invalid case document")

// Validate checks the authoring invariants that the engine relies on. All problems are reported at once.
func (c *Case) Validate() error {
	var problems []error
	fail := func(msg string, attrs ...slog.Attr) {
		problems = append(problems, errors.Wrap(ErrInvalidCase, msg, attrs...))
	}

	if strings.TrimSpace(c.Title) == "" {
		fail("title is missing")
	}
	if strings.TrimSpace(c.Victim.Name) == "" {
		fail("victim name is missing")
	}
	if len(c.Suspects) == 0 {
		fail("no suspects")
	}

	suspectIDs := make(map[string]bool, len(c.Suspects))
	alibiIDs := make(map[string]bool, len(c.Suspects))
	murderers := 0
	for _, s := range c.Suspects {
		switch {
		case s.ID == "":
			fail("suspect without id", slog.String("name", s.Name))
		case suspectIDs[s.ID]:
			fail("duplicate suspect id", slog.String("suspect_id", s.ID))
		}
		suspectIDs[s.ID] = true
		alibiKey := strings.ToLower(s.AlibiID)
		if alibiIDs[alibiKey] {
			fail("duplicate alibi id", slog.String("alibi_id", s.AlibiID))
		}
		alibiIDs[alibiKey] = true
		if s.IsMurderer {
			murderers++
		}
	}
	if len(c.Suspects) > 0 && murderers != 1 {
		fail("case must have exactly one murderer", slog.Int("murderers", murderers))
	}

	phoneKeys := make(map[string]bool, len(c.Suspects))
	for id := range suspectIDs {
		phoneKeys[PhoneKey(id)] = true
	}
	for key := range c.Evidence.LocationData {
		if !phoneKeys[key] {
			fail("location data for unknown phone", slog.String("phone_key", key))
		}
	}

	for id, record := range c.Evidence.DNA {
		switch {
		case record.PrimaryMatch != "" && record.Mixed():
			fail("dna record has both primary_match and matches", slog.String("evidence_id", id))
		case record.PrimaryMatch == "" && !record.Mixed():
			fail("dna record has no match", slog.String("evidence_id", id))
		case record.PrimaryMatch != "" && !suspectIDs[record.PrimaryMatch]:
			fail("dna record matches unknown suspect", slog.String("evidence_id", id),
				slog.String("suspect_id", record.PrimaryMatch))
		}
		for _, m := range record.Matches {
			if !suspectIDs[m] {
				fail("dna record matches unknown suspect", slog.String("evidence_id", id), slog.String("suspect_id", m))
			}
		}
	}

	cameras := make(map[string]bool, len(c.Evidence.FootageData))
	for _, loc := range c.Evidence.FootageData {
		if cameras[loc.Key] {
			fail("duplicate camera", slog.String("location", loc.Key))
		}
		cameras[loc.Key] = true
		if len(loc.Clips) == 0 {
			fail("camera without clips", slog.String("location", loc.Key))
		}
		unlocks := append([]string{}, loc.Unlocks...)
		for _, clip := range loc.Clips {
			unlocks = append(unlocks, clip.Unlocks...)
		}
		for _, id := range unlocks {
			if _, ok := c.Evidence.DNA[id]; !ok {
				fail("footage unlocks unknown evidence", slog.String("location", loc.Key), slog.String("evidence_id", id))
			}
		}
	}

	for id := range c.Evidence.Alibis {
		if !suspectIDs[id] {
			fail("alibi for unknown suspect", slog.String("suspect_id", id))
		}
	}

	if len(problems) > 0 {
		return errors.Join(problems...)
	}
	return nil
}
