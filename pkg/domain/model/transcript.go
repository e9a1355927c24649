package model

import "time"

// Transcript is a meeting transcript as exported by the transcription
// provider. Read-only from this system's perspective.
type Transcript struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	Duration     string    `json:"duration,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Participants []string  `json:"participants,omitempty"`
}
