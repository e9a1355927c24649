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

type contentItemRepository struct {
	mu    sync.RWMutex
	items map[types.ContentItemID]*model.ContentItem
}

func newContentItemRepository() *contentItemRepository {
	return &contentItemRepository{
		items: make(map[types.ContentItemID]*model.ContentItem),
	}
}

func copyContentItem(item *model.ContentItem) *model.ContentItem {
	copied := *item
	copied.Content = copyMap(item.Content)
	copied.Metadata = copyMap(item.Metadata)
	return &copied
}

func (r *contentItemRepository) Create(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyContentItem(item)
	if created.ID == "" {
		created.ID = types.NewContentItemID()
	}
	if created.Status == "" {
		created.Status = types.ContentStatusOutline
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.items[created.ID] = created
	return copyContentItem(created), nil
}

func (r *contentItemRepository) Get(ctx context.Context, id types.ContentItemID) (*model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
	}

	return copyContentItem(item), nil
}

func (r *contentItemRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*model.ContentItem
	for _, item := range r.items {
		if item.ProjectID == projectID {
			items = append(items, copyContentItem(item))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

func (r *contentItemRepository) Update(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[item.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", item.ID))
	}

	updated := copyContentItem(item)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.items[updated.ID] = updated
	return copyContentItem(updated), nil
}
