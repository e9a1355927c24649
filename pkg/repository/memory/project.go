package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.ContentProject
}

func newProjectRepository() *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.ContentProject),
	}
}

func copyProject(p *model.ContentProject) *model.ContentProject {
	copied := *p
	copied.Settings = copyMap(p.Settings)
	copied.Metadata = copyMap(p.Metadata)
	return &copied
}

func (r *projectRepository) Create(ctx context.Context, project *model.ContentProject) (*model.ContentProject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyProject(project)
	if created.ID == "" {
		created.ID = types.NewProjectID()
	}
	if created.Status == "" {
		created.Status = types.ContentStatusOutline
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.projects[created.ID] = created
	return copyProject(created), nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.ContentProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projects[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}

	return copyProject(project), nil
}

func (r *projectRepository) List(ctx context.Context, orgID types.OrganizationID, contentType types.ContentType) ([]*model.ContentProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var projects []*model.ContentProject
	for _, p := range r.projects {
		if p.OrganizationID != orgID {
			continue
		}
		if contentType != "" && p.Type != contentType {
			continue
		}
		projects = append(projects, copyProject(p))
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.ContentProject) (*model.ContentProject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.projects[project.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", project.ID))
	}

	updated := copyProject(project)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.projects[updated.ID] = updated
	return copyProject(updated), nil
}
