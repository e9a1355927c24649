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

type contentItemDocument struct {
	ID          string         `firestore:"id"`
	ProjectID   string         `firestore:"project_id"`
	Title       string         `firestore:"title"`
	Description string         `firestore:"description"`
	Status      string         `firestore:"status"`
	Content     map[string]any `firestore:"content,omitempty"`
	Metadata    map[string]any `firestore:"metadata,omitempty"`
	Progress    int            `firestore:"progress"`
	CreatedBy   string         `firestore:"created_by"`
	CreatedAt   time.Time      `firestore:"created_at"`
	UpdatedAt   time.Time      `firestore:"updated_at"`
}

type contentItemRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newContentItemRepository(client *firestore.Client) *contentItemRepository {
	return &contentItemRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *contentItemRepository) itemsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_content_items"
	}
	return "content_items"
}

func contentItemToDocument(item *model.ContentItem) *contentItemDocument {
	return &contentItemDocument{
		ID:          string(item.ID),
		ProjectID:   string(item.ProjectID),
		Title:       item.Title,
		Description: item.Description,
		Status:      string(item.Status),
		Content:     item.Content,
		Metadata:    item.Metadata,
		Progress:    item.Progress,
		CreatedBy:   string(item.CreatedBy),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func contentItemToModel(doc *contentItemDocument) *model.ContentItem {
	return &model.ContentItem{
		ID:          types.ContentItemID(doc.ID),
		ProjectID:   types.ProjectID(doc.ProjectID),
		Title:       doc.Title,
		Description: doc.Description,
		Status:      types.ContentStatus(doc.Status),
		Content:     doc.Content,
		Metadata:    doc.Metadata,
		Progress:    doc.Progress,
		CreatedBy:   types.UserID(doc.CreatedBy),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func (r *contentItemRepository) Create(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = types.NewContentItemID()
	}
	if item.Status == "" {
		item.Status = types.ContentStatusOutline
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	doc := contentItemToDocument(item)

	docRef := r.client.Collection(r.itemsCollection()).Doc(string(item.ID))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create content item")
	}

	return contentItemToModel(doc), nil
}

func (r *contentItemRepository) Get(ctx context.Context, id types.ContentItemID) (*model.ContentItem, error) {
	docRef := r.client.Collection(r.itemsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get content item", goerr.V("id", id))
	}

	var itemDoc contentItemDocument
	if err := doc.DataTo(&itemDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal content item", goerr.V("id", id))
	}

	return contentItemToModel(&itemDoc), nil
}

func (r *contentItemRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.ContentItem, error) {
	iter := r.client.Collection(r.itemsCollection()).
		Where("project_id", "==", string(projectID)).
		Documents(ctx)
	defer iter.Stop()

	var items []*model.ContentItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate content items", goerr.V("projectID", projectID))
		}

		var itemDoc contentItemDocument
		if err := doc.DataTo(&itemDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal content item", goerr.V("projectID", projectID))
		}

		items = append(items, contentItemToModel(&itemDoc))
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

func (r *contentItemRepository) Update(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	docRef := r.client.Collection(r.itemsCollection()).Doc(string(item.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", item.ID))
		}
		return nil, goerr.Wrap(err, "failed to get content item", goerr.V("id", item.ID))
	}

	var existing contentItemDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal content item", goerr.V("id", item.ID))
	}

	now := time.Now().UTC()
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = now

	updated := contentItemToDocument(item)

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update content item", goerr.V("id", item.ID))
	}

	return contentItemToModel(updated), nil
}
