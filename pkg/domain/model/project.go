package model

import (
	"time"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ContentProject groups content items of one type (podcast, blog, ebook) under
// an organization and tracks the overall workflow status.
type ContentProject struct {
	ID             types.ProjectID      `json:"id"`
	OrganizationID types.OrganizationID `json:"organizationId"`
	Name           string               `json:"name"`
	Type           types.ContentType    `json:"type"`
	Status         types.ContentStatus  `json:"status,omitempty"`
	HostType       types.HostType       `json:"hostType,omitempty"` // podcasts only
	Settings       map[string]any       `json:"settings,omitempty"`
	Metadata       map[string]any       `json:"metadata,omitempty"`
	CreatedBy      types.UserID         `json:"createdBy"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// Validate checks if the ContentProject is valid
func (p *ContentProject) Validate() error {
	if p.Name == "" {
		return goerr.New("project name is required")
	}
	if p.OrganizationID == "" {
		return goerr.New("project organization ID is required")
	}
	if !p.Type.IsValid() {
		return goerr.New("invalid content type", goerr.V("type", p.Type))
	}
	if p.Status != "" && !p.Status.IsValid() {
		return goerr.New("invalid content status", goerr.V("status", p.Status))
	}
	if p.HostType != "" {
		if p.Type != types.ContentTypePodcast {
			return goerr.New("host type is only valid for podcasts", goerr.V("type", p.Type))
		}
		if !p.HostType.IsValid() {
			return goerr.New("invalid host type", goerr.V("hostType", p.HostType))
		}
	}
	return nil
}

// ContentItem is a single deliverable within a project: an episode, a post or
// a chapter. Content carries the outline/script/draft as structured data.
type ContentItem struct {
	ID          types.ContentItemID `json:"id"`
	ProjectID   types.ProjectID     `json:"projectId"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      types.ContentStatus `json:"status,omitempty"`
	Content     map[string]any      `json:"content,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	Progress    int                 `json:"progress"` // 0-100
	CreatedBy   types.UserID        `json:"createdBy"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Validate checks if the ContentItem is valid
func (i *ContentItem) Validate() error {
	if i.Title == "" {
		return goerr.New("item title is required")
	}
	if i.ProjectID == "" {
		return goerr.New("item project ID is required")
	}
	if i.Status != "" && !i.Status.IsValid() {
		return goerr.New("invalid content status", goerr.V("status", i.Status))
	}
	if i.Progress < 0 || i.Progress > 100 {
		return goerr.New("progress must be between 0 and 100", goerr.V("progress", i.Progress))
	}
	return nil
}
