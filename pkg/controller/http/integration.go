package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

// integrationResponse is the redacted view of an integration. Credentials
// never leave the server.
type integrationResponse struct {
	ID            types.IntegrationID       `json:"id"`
	Provider      types.IntegrationProvider `json:"provider"`
	Status        types.IntegrationStatus   `json:"status"`
	Settings      map[string]any            `json:"settings,omitempty"`
	LastSync      time.Time                 `json:"lastSync,omitzero"`
	LastValidated time.Time                 `json:"lastValidated,omitzero"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

func toIntegrationResponse(integration *model.Integration) integrationResponse {
	return integrationResponse{
		ID:            integration.ID,
		Provider:      integration.Provider,
		Status:        integration.Status,
		Settings:      integration.Settings,
		LastSync:      integration.LastSync,
		LastValidated: integration.LastValidated,
		CreatedAt:     integration.CreatedAt,
		UpdatedAt:     integration.UpdatedAt,
	}
}

func (s *Server) handleUpsertIntegration(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req struct {
		Provider    types.IntegrationProvider `json:"provider"`
		Status      types.IntegrationStatus   `json:"status"`
		Credentials *model.Credentials        `json:"credentials"`
		Settings    map[string]any            `json:"settings"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid integration payload"), http.StatusBadRequest)
		return
	}

	integration, err := s.uc.UpsertIntegration(r.Context(), user.ID, &model.Integration{
		Provider:    req.Provider,
		Status:      req.Status,
		Credentials: req.Credentials,
		Settings:    req.Settings,
	})
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, toIntegrationResponse(integration))
}

func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	integrations, err := s.uc.ListIntegrations(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := make([]integrationResponse, len(integrations))
	for i, integration := range integrations {
		resp[i] = toIntegrationResponse(integration)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	provider := types.IntegrationProvider(chi.URLParam(r, "provider"))

	if err := s.uc.DeleteIntegration(r.Context(), user.ID, provider); err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTestIntegration(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	provider := types.IntegrationProvider(chi.URLParam(r, "provider"))

	if err := s.uc.TestIntegration(r.Context(), user.ID, provider); err != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetTranscripts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, goerr.Wrap(err, "invalid start time"), http.StatusBadRequest)
			return
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, goerr.Wrap(err, "invalid end time"), http.StatusBadRequest)
			return
		}
		end = t
	}

	transcripts, err := s.uc.GetTranscripts(r.Context(), user.ID, start, end)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, transcripts)
}
