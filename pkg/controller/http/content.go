package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/service/contentgen"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	me, err := s.uc.GetMe(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":              me.ID,
		"email":           me.Email,
		"firstName":       me.FirstName,
		"lastName":        me.LastName,
		"displayName":     me.DisplayName(),
		"profileImageUrl": me.ProfileImageURL,
	})
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req struct {
		Name        string             `json:"name"`
		BillingPlan types.BillingPlan  `json:"billingPlan"`
		Settings    map[string]any     `json:"settings"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid organization payload"), http.StatusBadRequest)
		return
	}

	org, err := s.uc.CreateOrganization(r.Context(), user.ID, &model.Organization{
		Name:        req.Name,
		BillingPlan: req.BillingPlan,
		Settings:    req.Settings,
	})
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, org)
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	orgs, err := s.uc.ListOrganizations(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, orgs)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	orgID := types.OrganizationID(chi.URLParam(r, "orgID"))

	org, err := s.uc.GetOrganization(r.Context(), user.ID, orgID)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, org)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req struct {
		OrganizationID types.OrganizationID `json:"organizationId"`
		Name           string               `json:"name"`
		Type           types.ContentType    `json:"type"`
		HostType       types.HostType       `json:"hostType"`
		Settings       map[string]any       `json:"settings"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid project payload"), http.StatusBadRequest)
		return
	}

	project, err := s.uc.CreateProject(r.Context(), user.ID, &model.ContentProject{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Type:           req.Type,
		HostType:       req.HostType,
		Settings:       req.Settings,
	})
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	orgID := types.OrganizationID(r.URL.Query().Get("organization_id"))
	contentType := types.ContentType(r.URL.Query().Get("type"))

	projects, err := s.uc.ListProjects(r.Context(), orgID, contentType)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := types.ProjectID(chi.URLParam(r, "projectID"))

	var req struct {
		OrganizationID types.OrganizationID `json:"organizationId"`
		Name           string               `json:"name"`
		Type           types.ContentType    `json:"type"`
		Status         types.ContentStatus  `json:"status"`
		HostType       types.HostType       `json:"hostType"`
		Settings       map[string]any       `json:"settings"`
		Metadata       map[string]any       `json:"metadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid project payload"), http.StatusBadRequest)
		return
	}

	updated, err := s.uc.UpdateProject(r.Context(), &model.ContentProject{
		ID:             projectID,
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Type:           req.Type,
		Status:         req.Status,
		HostType:       req.HostType,
		Settings:       req.Settings,
		Metadata:       req.Metadata,
	})
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCreateContentItem(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	projectID := types.ProjectID(chi.URLParam(r, "projectID"))

	var req contentItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid content item payload"), http.StatusBadRequest)
		return
	}

	item := req.toModel()
	item.ProjectID = projectID

	created, err := s.uc.CreateContentItem(r.Context(), user.ID, item)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListContentItems(w http.ResponseWriter, r *http.Request) {
	projectID := types.ProjectID(chi.URLParam(r, "projectID"))

	items, err := s.uc.ListContentItems(r.Context(), projectID)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpdateContentItem(w http.ResponseWriter, r *http.Request) {
	itemID := types.ContentItemID(chi.URLParam(r, "itemID"))

	var req contentItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid content item payload"), http.StatusBadRequest)
		return
	}

	item := req.toModel()
	item.ID = itemID

	updated, err := s.uc.UpdateContentItem(r.Context(), item)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

type contentItemRequest struct {
	ProjectID   types.ProjectID     `json:"projectId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      types.ContentStatus `json:"status"`
	Content     map[string]any      `json:"content"`
	Metadata    map[string]any      `json:"metadata"`
	Progress    int                 `json:"progress"`
}

func (req *contentItemRequest) toModel() *model.ContentItem {
	return &model.ContentItem{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Content:     req.Content,
		Metadata:    req.Metadata,
		Progress:    req.Progress,
	}
}

func (s *Server) handleGenerateOutline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID types.ProjectID `json:"projectId"`
		Prompt    string          `json:"prompt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid outline request"), http.StatusBadRequest)
		return
	}

	outline, err := s.uc.GenerateOutline(r.Context(), req.ProjectID, req.Prompt)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, outline)
}

func (s *Server) handleGenerateBlogDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Outline *contentgen.ContentOutline `json:"outline"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Outline == nil {
		respondError(w, r, goerr.New("invalid blog draft request"), http.StatusBadRequest)
		return
	}

	draft, err := s.uc.GenerateBlogDraft(r.Context(), req.Outline)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, draft)
}

func (s *Server) handleGeneratePodcastScript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID types.ProjectID            `json:"projectId"`
		Outline   *contentgen.ContentOutline `json:"outline"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Outline == nil {
		respondError(w, r, goerr.New("invalid podcast script request"), http.StatusBadRequest)
		return
	}

	script, err := s.uc.GeneratePodcastScript(r.Context(), req.ProjectID, req.Outline)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, script)
}

func (s *Server) handleEnhanceContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content     string `json:"content"`
		Instruction string `json:"instruction"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid enhance request"), http.StatusBadRequest)
		return
	}

	enhanced, err := s.uc.EnhanceContent(r.Context(), req.Content, req.Instruction)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, enhanced)
}
