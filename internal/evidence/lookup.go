package evidence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/myrjola/murderai/internal/casefile"
)

const (
	locationAccuracy = "Cell tower triangulation ±50m"
	noKeyFrame       = "No significant events"
	mixedMatch       = "Mixed/Inconclusive"
	mixedConfidence  = "N/A (multiple sources)"
)

// LocationReport is a phone location finding. Without a timestamp only History is set.
type LocationReport struct {
	PhoneNumber string   `json:"phone_number"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Coordinates string   `json:"coordinates,omitempty"`
	Description string   `json:"description,omitempty"`
	Accuracy    string   `json:"accuracy,omitempty"`
	History     []string `json:"history,omitempty"`
}

// Locate looks up where the phone was at timestamp. The whole history is returned when timestamp is empty.
func Locate(c *casefile.Case, phoneNumber, timestamp string) (LocationReport, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	timestamp = strings.TrimSpace(timestamp)
	if phoneNumber == "" {
		return LocationReport{}, miss(ErrMissingArgument, "A phone number is required.")
	}

	var suspectID string
	for _, s := range c.Suspects {
		if samePhone(phoneNumber, s.PhoneNumber) {
			suspectID = s.ID
			break
		}
	}
	if suspectID == "" {
		return LocationReport{}, miss(ErrNotAssociated, "Phone number not associated with any suspect.")
	}

	history := c.Evidence.LocationData[casefile.PhoneKey(suspectID)]
	if len(history) == 0 {
		return LocationReport{}, miss(ErrNoLocationData, fmt.Sprintf("No location data found for %s.", phoneNumber))
	}

	if timestamp == "" {
		entries := make([]string, 0, len(history))
		for _, p := range history {
			entries = append(entries, p.Timestamp+": "+p.Location)
		}
		return LocationReport{PhoneNumber: phoneNumber, History: entries, Accuracy: locationAccuracy}, nil //nolint:exhaustruct // history only
	}

	for _, p := range history {
		if strings.EqualFold(p.Timestamp, timestamp) {
			return LocationReport{
				PhoneNumber: phoneNumber,
				Timestamp:   p.Timestamp,
				Coordinates: formatCoordinate(p.Lat) + ", " + formatCoordinate(p.Lng),
				Description: p.Location,
				Accuracy:    locationAccuracy,
				History:     nil,
			}, nil
		}
	}
	return LocationReport{}, miss(ErrNoLocationData,
		fmt.Sprintf("No location data found for %s at %s.", phoneNumber, timestamp), history.Timestamps()...)
}

func formatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FootageReport is one camera clip.
type FootageReport struct {
	Location      string   `json:"location"`
	TimeRange     string   `json:"time_range"`
	VisiblePeople []string `json:"visible_people"`
	Quality       string   `json:"quality"`
	KeyDetails    string   `json:"key_details"`
	// Unlocks holds every evidence ID the camera and the clip reveal. Deduplication against earlier unlocks is up to
	// the caller.
	Unlocks []string `json:"unlocks,omitempty"`
}

// Footage returns a clip of the first camera whose name loosely matches location. The first clip is picked when
// timeRange is empty.
func Footage(c *casefile.Case, location, timeRange string) (FootageReport, error) { //nolint:funlen // one lookup step per block
	location = strings.TrimSpace(location)
	timeRange = strings.TrimSpace(timeRange)
	if normalizePlace(location) == "" {
		return FootageReport{}, miss(ErrMissingArgument, "A camera location is required.", c.Cameras()...)
	}

	var camera *casefile.FootageLocation
	for i := range c.Evidence.FootageData {
		if samePlace(location, c.Evidence.FootageData[i].Key) {
			camera = &c.Evidence.FootageData[i]
			break
		}
	}
	if camera == nil || len(camera.Clips) == 0 {
		return FootageReport{}, miss(ErrNoFootage, "No camera footage available at this location/time.", c.Cameras()...)
	}

	var clip *casefile.FootageClip
	if timeRange == "" {
		clip = &camera.Clips[0]
	} else {
		for i := range camera.Clips {
			if strings.EqualFold(camera.Clips[i].TimeRange, timeRange) {
				clip = &camera.Clips[i]
				break
			}
		}
	}
	if clip == nil {
		return FootageReport{}, miss(ErrNoFootage,
			fmt.Sprintf("No camera footage available at %s for %s.", camera.Key, timeRange), camera.TimeRanges()...)
	}

	keyDetails := clip.KeyFrame
	if keyDetails == "" {
		keyDetails = noKeyFrame
	}
	visible := append([]string{}, clip.VisiblePeople...)
	return FootageReport{
		Location:      camera.Key,
		TimeRange:     clip.TimeRange,
		VisiblePeople: visible,
		Quality:       clip.Quality,
		KeyDetails:    keyDetails,
		Unlocks:       appendUnique(appendUnique(nil, camera.Unlocks...), clip.Unlocks...),
	}, nil
}

// DNAReport is a lab result. Matches lists contributor names for a mixed sample.
type DNAReport struct {
	EvidenceID   string   `json:"evidence_id"`
	PrimaryMatch string   `json:"primary_match"`
	Confidence   string   `json:"confidence"`
	Matches      []string `json:"matches,omitempty"`
	Notes        string   `json:"notes"`
}

// DNA runs the lab test on an evidence item. Suspect IDs are resolved to names.
func DNA(c *casefile.Case, evidenceID string) (DNAReport, error) {
	evidenceID = strings.TrimSpace(evidenceID)
	if evidenceID == "" {
		return DNAReport{}, miss(ErrMissingArgument, "An evidence ID is required.")
	}
	record, ok := c.Evidence.DNA[evidenceID]
	if !ok {
		return DNAReport{}, miss(ErrEvidenceNotFound, "Evidence not found or not testable.")
	}

	if record.Mixed() {
		names := make([]string, 0, len(record.Matches))
		for _, id := range record.Matches {
			names = append(names, c.SuspectName(id))
		}
		return DNAReport{
			EvidenceID:   evidenceID,
			PrimaryMatch: mixedMatch,
			Confidence:   mixedConfidence,
			Matches:      names,
			Notes:        record.Notes,
		}, nil
	}
	return DNAReport{
		EvidenceID:   evidenceID,
		PrimaryMatch: c.SuspectName(record.PrimaryMatch),
		Confidence:   record.Confidence,
		Matches:      nil,
		Notes:        record.Notes,
	}, nil
}
