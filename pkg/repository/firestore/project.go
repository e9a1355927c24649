package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type projectDocument struct {
	ID             string         `firestore:"id"`
	OrganizationID string         `firestore:"organization_id"`
	Name           string         `firestore:"name"`
	Type           string         `firestore:"type"`
	Status         string         `firestore:"status"`
	HostType       string         `firestore:"host_type,omitempty"`
	Settings       map[string]any `firestore:"settings,omitempty"`
	Metadata       map[string]any `firestore:"metadata,omitempty"`
	CreatedBy      string         `firestore:"created_by"`
	CreatedAt      time.Time      `firestore:"created_at"`
	UpdatedAt      time.Time      `firestore:"updated_at"`
}

type projectRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProjectRepository(client *firestore.Client) *projectRepository {
	return &projectRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *projectRepository) projectsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_content_projects"
	}
	return "content_projects"
}

func projectToDocument(project *model.ContentProject) *projectDocument {
	return &projectDocument{
		ID:             string(project.ID),
		OrganizationID: string(project.OrganizationID),
		Name:           project.Name,
		Type:           string(project.Type),
		Status:         string(project.Status),
		HostType:       string(project.HostType),
		Settings:       project.Settings,
		Metadata:       project.Metadata,
		CreatedBy:      string(project.CreatedBy),
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
}

func projectToModel(doc *projectDocument) *model.ContentProject {
	return &model.ContentProject{
		ID:             types.ProjectID(doc.ID),
		OrganizationID: types.OrganizationID(doc.OrganizationID),
		Name:           doc.Name,
		Type:           types.ContentType(doc.Type),
		Status:         types.ContentStatus(doc.Status),
		HostType:       types.HostType(doc.HostType),
		Settings:       doc.Settings,
		Metadata:       doc.Metadata,
		CreatedBy:      types.UserID(doc.CreatedBy),
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

func (r *projectRepository) Create(ctx context.Context, project *model.ContentProject) (*model.ContentProject, error) {
	now := time.Now().UTC()
	if project.ID == "" {
		project.ID = types.NewProjectID()
	}
	if project.Status == "" {
		project.Status = types.ContentStatusOutline
	}
	project.CreatedAt = now
	project.UpdatedAt = now

	doc := projectToDocument(project)

	docRef := r.client.Collection(r.projectsCollection()).Doc(string(project.ID))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create project")
	}

	return projectToModel(doc), nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.ContentProject, error) {
	docRef := r.client.Collection(r.projectsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	var projDoc projectDocument
	if err := doc.DataTo(&projDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", id))
	}

	return projectToModel(&projDoc), nil
}

func (r *projectRepository) List(ctx context.Context, orgID types.OrganizationID, contentType types.ContentType) ([]*model.ContentProject, error) {
	iter := r.client.Collection(r.projectsCollection()).
		Where("organization_id", "==", string(orgID)).
		Documents(ctx)
	defer iter.Stop()

	var projects []*model.ContentProject
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects", goerr.V("orgID", orgID))
		}

		var projDoc projectDocument
		if err := doc.DataTo(&projDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("orgID", orgID))
		}

		if contentType != "" && projDoc.Type != string(contentType) {
			continue
		}

		projects = append(projects, projectToModel(&projDoc))
	}

	// Newest first
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.ContentProject) (*model.ContentProject, error) {
	docRef := r.client.Collection(r.projectsCollection()).Doc(string(project.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", project.ID))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", project.ID))
	}

	var existing projectDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", project.ID))
	}

	now := time.Now().UTC()
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = now

	updated := projectToDocument(project)

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update project", goerr.V("id", project.ID))
	}

	return projectToModel(updated), nil
}
