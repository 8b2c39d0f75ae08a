package game

import (
	"slices"
	"time"
)

// Snapshot is the player's view of a game. Ground truth about the suspects is only included once the game is over.
type Snapshot struct {
	ID             string        `json:"id"`
	CaseKey        string        `json:"case_key"`
	Title          string        `json:"title"`
	Victim         VictimView    `json:"victim"`
	Suspects       []SuspectView `json:"suspects"`
	Cameras        []string      `json:"cameras"`
	Round          int           `json:"round"`
	MaxRounds      int           `json:"max_rounds"`
	Points         int           `json:"points"`
	Status         Status        `json:"status"`
	GameOver       bool          `json:"game_over"`
	VerdictCorrect bool          `json:"verdict_correct"`
	Evidence       []ToolResult  `json:"evidence"`
	Unlocked       []string      `json:"unlocked_evidence"`
	Eliminated     []string      `json:"eliminated_suspects"`
	Logs           []LogEntry    `json:"logs"`
	OpenedAt       time.Time     `json:"opened_at"`
	LastActive     time.Time     `json:"last_active"`
}

type VictimView struct {
	Name        string `json:"name"`
	Age         int    `json:"age,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
	TimeOfDeath string `json:"time_of_death"`
	Location    string `json:"location"`
}

type SuspectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Gender      string `json:"gender,omitempty"`
	Bio         string `json:"bio"`
	AlibiStory  string `json:"alibi_story"`
	PhoneNumber string `json:"phone_number"`
	AlibiID     string `json:"alibi_id"`
	Eliminated  bool   `json:"eliminated"`
	// Revealed after the verdict.
	IsMurderer   *bool  `json:"is_murderer,omitempty"`
	TrueLocation string `json:"true_location,omitempty"`
	Motive       string `json:"motive,omitempty"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	over := s.status.Over()
	suspects := make([]SuspectView, 0, len(s.c.Suspects))
	for _, suspect := range s.c.Suspects {
		view := SuspectView{
			ID:           suspect.ID,
			Name:         suspect.Name,
			Role:         suspect.Role,
			Gender:       suspect.Gender,
			Bio:          suspect.Bio,
			AlibiStory:   suspect.AlibiStory,
			PhoneNumber:  suspect.PhoneNumber,
			AlibiID:      suspect.AlibiID,
			Eliminated:   slices.Contains(s.eliminated, suspect.ID),
			IsMurderer:   nil,
			TrueLocation: "",
			Motive:       "",
		}
		if over {
			isMurderer := suspect.IsMurderer
			view.IsMurderer = &isMurderer
			view.TrueLocation = suspect.TrueLocation
			view.Motive = suspect.Motive
		}
		suspects = append(suspects, view)
	}

	v := s.c.Victim
	return Snapshot{
		ID:      s.id,
		CaseKey: s.c.Key,
		Title:   s.c.Title,
		Victim: VictimView{
			Name:        v.Name,
			Age:         v.Age,
			Occupation:  v.Occupation,
			TimeOfDeath: v.TimeOfDeath,
			Location:    v.Location,
		},
		Suspects:       suspects,
		Cameras:        s.c.Cameras(),
		Round:          s.round,
		MaxRounds:      s.rules.MaxRounds,
		Points:         s.points,
		Status:         s.status,
		GameOver:       over,
		VerdictCorrect: s.status == StatusWon,
		Evidence:       slices.Clone(s.evidence),
		Unlocked:       slices.Clone(s.unlocked),
		Eliminated:     slices.Clone(s.eliminated),
		Logs:           slices.Clone(s.logs),
		OpenedAt:       s.openedAt,
		LastActive:     s.LastActive(),
	}
}
