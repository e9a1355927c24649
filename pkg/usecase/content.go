package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/service/contentgen"
)

// CreateProject creates a content project for an organization.
func (uc *UseCases) CreateProject(ctx context.Context, userID types.UserID, project *model.ContentProject) (*model.ContentProject, error) {
	project.CreatedBy = userID
	if err := project.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Project().Create(ctx, project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create project",
			goerr.V("name", project.Name),
		)
	}

	return created, nil
}

// ListProjects returns the organization's projects, optionally filtered by
// content type (empty means all).
func (uc *UseCases) ListProjects(ctx context.Context, orgID types.OrganizationID, contentType types.ContentType) ([]*model.ContentProject, error) {
	if contentType != "" && !contentType.IsValid() {
		return nil, goerr.New("invalid content type filter", goerr.V("type", contentType))
	}

	projects, err := uc.repo.Project().List(ctx, orgID, contentType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects",
			goerr.V("organizationID", orgID),
		)
	}

	return projects, nil
}

// UpdateProject updates a project's mutable fields.
func (uc *UseCases) UpdateProject(ctx context.Context, project *model.ContentProject) (*model.ContentProject, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Project().Update(ctx, project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update project",
			goerr.V("projectID", project.ID),
		)
	}

	return updated, nil
}

// CreateContentItem adds a deliverable to a project.
func (uc *UseCases) CreateContentItem(ctx context.Context, userID types.UserID, item *model.ContentItem) (*model.ContentItem, error) {
	item.CreatedBy = userID
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.repo.Project().Get(ctx, item.ProjectID); err != nil {
		return nil, goerr.Wrap(err, "project not found",
			goerr.V("projectID", item.ProjectID),
		)
	}

	created, err := uc.repo.ContentItem().Create(ctx, item)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create content item",
			goerr.V("projectID", item.ProjectID),
		)
	}

	return created, nil
}

// ListContentItems returns the items of a project.
func (uc *UseCases) ListContentItems(ctx context.Context, projectID types.ProjectID) ([]*model.ContentItem, error) {
	items, err := uc.repo.ContentItem().ListByProject(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list content items",
			goerr.V("projectID", projectID),
		)
	}
	return items, nil
}

// UpdateContentItem updates an item's mutable fields.
func (uc *UseCases) UpdateContentItem(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	updated, err := uc.repo.ContentItem().Update(ctx, item)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update content item",
			goerr.V("itemID", item.ID),
		)
	}

	return updated, nil
}

// ErrGenerationDisabled is returned when no LLM client is configured.
var ErrGenerationDisabled = goerr.New("content generation is not configured")

// GenerateOutline generates a structured outline for a project.
func (uc *UseCases) GenerateOutline(ctx context.Context, projectID types.ProjectID, prompt string) (*contentgen.ContentOutline, error) {
	if uc.contentGen == nil {
		return nil, ErrGenerationDisabled
	}

	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "project not found", goerr.V("projectID", projectID))
	}

	return uc.contentGen.GenerateOutline(ctx, project.Type, prompt, contentgen.OutlineSettings{
		HostType: project.HostType,
	})
}

// GenerateBlogDraft expands an outline into a full blog post.
func (uc *UseCases) GenerateBlogDraft(ctx context.Context, outline *contentgen.ContentOutline) (*contentgen.BlogDraft, error) {
	if uc.contentGen == nil {
		return nil, ErrGenerationDisabled
	}
	return uc.contentGen.GenerateBlogDraft(ctx, outline)
}

// GeneratePodcastScript expands an outline into a speaker-tagged script.
func (uc *UseCases) GeneratePodcastScript(ctx context.Context, projectID types.ProjectID, outline *contentgen.ContentOutline) (*contentgen.PodcastScript, error) {
	if uc.contentGen == nil {
		return nil, ErrGenerationDisabled
	}

	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "project not found", goerr.V("projectID", projectID))
	}

	return uc.contentGen.GeneratePodcastScript(ctx, outline, project.HostType)
}

// EnhanceContent runs an improvement pass over existing content.
func (uc *UseCases) EnhanceContent(ctx context.Context, content, instruction string) (*contentgen.EnhancedContent, error) {
	if uc.contentGen == nil {
		return nil, ErrGenerationDisabled
	}
	return uc.contentGen.EnhanceContent(ctx, content, instruction)
}
