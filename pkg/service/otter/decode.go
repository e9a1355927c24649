package otter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// speechPayload tolerates the field-name drift seen across export responses.
type speechPayload struct {
	SpeechID        string          `json:"speech_id"`
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Name            string          `json:"name"`
	CreatedAt       string          `json:"created_at"`
	Date            string          `json:"date"`
	Duration        json.RawMessage `json:"duration"`
	Summary         string          `json:"summary"`
	AbstractSummary string          `json:"abstract_summary"`
	Description     string          `json:"description"`
	CalendarGuests  *struct {
		Name string `json:"name"`
	} `json:"calendar_guests"`
}

// decodeSpeeches probes the known envelope shapes: {"data": [...]},
// {"speeches": [...]}, {"recordings": [...]} or a bare array.
func decodeSpeeches(body []byte) ([]speechPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var speeches []speechPayload
		if err := json.Unmarshal(trimmed, &speeches); err != nil {
			return nil, goerr.Wrap(err, "failed to decode speech array")
		}
		return speeches, nil
	}

	var envelope struct {
		Data       []speechPayload `json:"data"`
		Speeches   []speechPayload `json:"speeches"`
		Recordings []speechPayload `json:"recordings"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, goerr.Wrap(err, "failed to decode speech export response")
	}

	switch {
	case len(envelope.Data) > 0:
		return envelope.Data, nil
	case len(envelope.Speeches) > 0:
		return envelope.Speeches, nil
	case len(envelope.Recordings) > 0:
		return envelope.Recordings, nil
	default:
		return nil, nil
	}
}

func (s *speechPayload) toModel() *model.Transcript {
	id := s.SpeechID
	if id == "" {
		id = s.ID
	}
	if id == "" {
		id = "unknown-" + s.Title
	}

	title := s.Title
	if title == "" {
		title = s.Name
	}
	if title == "" {
		title = "Untitled Meeting"
	}

	summary := s.Summary
	if summary == "" {
		summary = s.AbstractSummary
	}
	if summary == "" {
		summary = s.Description
	}

	var participants []string
	if s.CalendarGuests != nil && s.CalendarGuests.Name != "" {
		participants = []string{s.CalendarGuests.Name}
	}

	return &model.Transcript{
		ID:           id,
		Title:        title,
		Date:         parseDate(s.CreatedAt, s.Date),
		Duration:     formatDuration(s.Duration),
		Summary:      summary,
		Participants: participants,
	}
}

func parseDate(candidates ...string) time.Time {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		for _, format := range formats {
			if t, err := time.Parse(format, raw); err == nil {
				return t.UTC()
			}
		}
		// Some accounts report epoch seconds
		if sec, err := strconv.ParseInt(raw, 10, 64); err == nil && sec > 0 {
			return time.Unix(sec, 0).UTC()
		}
	}
	return time.Time{}
}

// formatDuration renders a duration that may arrive as seconds or as an
// already formatted string.
func formatDuration(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "Unknown"
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "" {
			return "Unknown"
		}
		return str
	}

	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err == nil {
		if seconds <= 0 {
			return "0m"
		}
		total := int(seconds)
		hours := total / 3600
		minutes := (total % 3600) / 60
		if hours > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dm", minutes)
	}

	return "Unknown"
}
