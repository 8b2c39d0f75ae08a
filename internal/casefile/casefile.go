// Package casefile models the authored case documents: the victim, the suspects and the ground-truth
// evidence tables that the forensic tools query.
//
// A Case is decoded and validated once at load time and must be treated as read-only afterwards. It is
// shared by every game that plays it.
package casefile

import (
	"strings"
)

// Case is one authored murder mystery.
type Case struct {
	// Key is the file stem the case was loaded from, e.g. "silicon_valley".
	Key      string    `yaml:"-"`
	Title    string    `yaml:"title"`
	Victim   Victim    `yaml:"victim"`
	Suspects []Suspect `yaml:"suspects"`
	Evidence Evidence  `yaml:"evidence"`
}

type Victim struct {
	Name        string `yaml:"name"`
	Age         int    `yaml:"age,omitempty"`
	Occupation  string `yaml:"occupation,omitempty"`
	TimeOfDeath string `yaml:"time_of_death"`
	Location    string `yaml:"location"`
}

type Suspect struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Role         string `yaml:"role"`
	Gender       string `yaml:"gender,omitempty"`
	Bio          string `yaml:"bio"`
	IsMurderer   bool   `yaml:"is_murderer"`
	AlibiStory   string `yaml:"alibi_story"`
	TrueLocation string `yaml:"true_location"`
	PhoneNumber  string `yaml:"phone_number"`
	AlibiID      string `yaml:"alibi_id"`
	Motive       string `yaml:"motive"`
}

// Evidence bundles the independent lookup tables.
type Evidence struct {
	// LocationData is keyed by PhoneKey of a suspect.
	LocationData map[string]LocationHistory `yaml:"location_data"`
	FootageData  FootageIndex               `yaml:"footage_data"`
	DNA          map[string]DNARecord       `yaml:"dna_evidence"`
	// Alibis is keyed by suspect ID.
	Alibis map[string]AlibiRecord `yaml:"alibis"`
}

// LocationPing is one entry of a phone's location history.
type LocationPing struct {
	Timestamp string  `yaml:"-"`
	Lat       float64 `yaml:"lat"`
	Lng       float64 `yaml:"lng"`
	Location  string  `yaml:"location"`
}

// LocationHistory keeps the pings in authoring order.
type LocationHistory []LocationPing

// FootageClip is the recording of one camera for one time range.
type FootageClip struct {
	TimeRange     string   `yaml:"-"`
	VisiblePeople []string `yaml:"visible_people"`
	Quality       string   `yaml:"quality"`
	KeyFrame      string   `yaml:"key_frame"`
	Unlocks       []string `yaml:"unlocks"`
}

// FootageLocation is a camera with its clips in authoring order. Unlocks holds the evidence IDs that any
// successful query of this camera makes known to the detective.
type FootageLocation struct {
	Key     string
	Clips   []FootageClip
	Unlocks []string
}

// FootageIndex keeps cameras in authoring order.
type FootageIndex []FootageLocation

// DNARecord is either a clean match (PrimaryMatch) or a mixed sample (Matches).
type DNARecord struct {
	PrimaryMatch string   `yaml:"primary_match"`
	Confidence   string   `yaml:"confidence"`
	Matches      []string `yaml:"matches"`
	Notes        string   `yaml:"notes"`
}

// Mixed reports whether the sample has several contributors.
func (r DNARecord) Mixed() bool {
	return len(r.Matches) > 0
}

type AlibiRecord struct {
	Contact     string `yaml:"contact"`
	ContactName string `yaml:"contact_name"`
	// Truth is the ground truth known to the contact.
	Truth      string `yaml:"truth"`
	Verifiable bool   `yaml:"verifiable"`
}

// PhoneKey is the location_data key of a suspect.
func PhoneKey(suspectID string) string {
	return suspectID + "_phone"
}

// Suspect returns the suspect with the given ID.
func (c *Case) Suspect(id string) (Suspect, bool) {
	for _, s := range c.Suspects {
		if s.ID == id {
			return s, true
		}
	}
	return Suspect{}, false
}

// Murderer returns the one suspect who did it.
func (c *Case) Murderer() Suspect {
	for _, s := range c.Suspects {
		if s.IsMurderer {
			return s
		}
	}
	return Suspect{}
}

// SuspectByAlibiID resolves an alibi ID case-insensitively.
func (c *Case) SuspectByAlibiID(alibiID string) (Suspect, bool) {
	alibiID = strings.TrimSpace(alibiID)
	for _, s := range c.Suspects {
		if strings.EqualFold(s.AlibiID, alibiID) {
			return s, true
		}
	}
	return Suspect{}, false
}

// SuspectName returns the display name for id, or "Unknown".
func (c *Case) SuspectName(id string) string {
	if s, ok := c.Suspect(id); ok {
		return s.Name
	}
	return "Unknown"
}

// Cameras lists the footage location keys in authoring order.
func (c *Case) Cameras() []string {
	cameras := make([]string, 0, len(c.Evidence.FootageData))
	for _, loc := range c.Evidence.FootageData {
		cameras = append(cameras, loc.Key)
	}
	return cameras
}

// Timestamps lists the timestamps of a history in authoring order.
func (h LocationHistory) Timestamps() []string {
	timestamps := make([]string, 0, len(h))
	for _, p := range h {
		timestamps = append(timestamps, p.Timestamp)
	}
	return timestamps
}

// TimeRanges lists the clip time ranges in authoring order.
func (l FootageLocation) TimeRanges() []string {
	ranges := make([]string, 0, len(l.Clips))
	for _, c := range l.Clips {
		ranges = append(ranges, c.TimeRange)
	}
	return ranges
}
