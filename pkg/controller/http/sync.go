package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

func (s *Server) handleSyncMeeting(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var meeting model.InboundMeeting
	if err := decodeJSON(r, &meeting); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid meeting payload"), http.StatusBadRequest)
		return
	}
	if err := meeting.Validate(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.uc.SyncMeeting(r.Context(), user.ID, &meeting)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	respondJSON(w, status, result)
}

func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	feedURL := r.URL.Query().Get("feed_url")
	daysBack := 30
	if v := r.URL.Query().Get("days_back"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, r, goerr.New("invalid days_back"), http.StatusBadRequest)
			return
		}
		daysBack = n
	}

	events, err := s.uc.FetchCalendarEvents(r.Context(), user.ID, feedURL, daysBack)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleDismissMeeting(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req struct {
		MeetingID string `json:"meetingId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid dismiss payload"), http.StatusBadRequest)
		return
	}

	if err := s.uc.DismissMeeting(r.Context(), user.ID, req.MeetingID); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDismissedMeetings(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	dismissed, err := s.uc.ListDismissedMeetings(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, dismissed)
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrganizationID types.OrganizationID `json:"organizationId"`
		Source         string               `json:"source"`
		Metrics        map[string]any       `json:"metrics"`
		Timestamp      time.Time            `json:"timestamp"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid snapshot payload"), http.StatusBadRequest)
		return
	}

	created, err := s.uc.CreateAnalyticsSnapshot(r.Context(), &model.AnalyticsSnapshot{
		OrganizationID: req.OrganizationID,
		Source:         req.Source,
		Metrics:        req.Metrics,
		Timestamp:      req.Timestamp,
	})
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	orgID := types.OrganizationID(r.URL.Query().Get("organization_id"))
	source := r.URL.Query().Get("source")

	snapshots, err := s.uc.ListAnalyticsSnapshots(r.Context(), orgID, source)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}
