package models

import "time"

// Game is the archived summary of a playthrough.
type Game struct {
	ID       string     `db:"id"        json:"id"`
	CaseKey  string     `db:"case_key"  json:"case_key"`
	Title    string     `db:"title"     json:"title"`
	Status   string     `db:"status"    json:"status"`
	Round    int        `db:"round"     json:"round"`
	Points   int        `db:"points"    json:"points"`
	OpenedAt time.Time  `db:"opened_at" json:"opened_at"`
	ClosedAt *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// TranscriptEntry is one logged line of a game.
type TranscriptEntry struct {
	GameID   string    `db:"game_id"   json:"-"`
	Seq      int       `db:"seq"       json:"seq"`
	Speaker  string    `db:"speaker"   json:"speaker"`
	Message  string    `db:"message"   json:"message"`
	LoggedAt time.Time `db:"logged_at" json:"logged_at"`
}

// Transcript is a game with all its logged lines in order.
type Transcript struct {
	Game    Game              `json:"game"`
	Entries []TranscriptEntry `json:"entries"`
}
