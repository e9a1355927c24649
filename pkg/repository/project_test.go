package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/repository/firestore"
	"github.com/createai-lab/createai/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func runProjectRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create creates project with defaults", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		project := &model.ContentProject{
			OrganizationID: types.NewOrganizationID(),
			Name:           "Morning Brew Podcast",
			Type:           types.ContentTypePodcast,
			HostType:       types.HostTypeMorningShow,
			CreatedBy:      "user-1",
		}

		created, err := repo.Project().Create(ctx, project)
		gt.NoError(t, err).Required()

		gt.String(t, string(created.ID)).NotEqual("")
		gt.Value(t, created.Status).Equal(types.ContentStatusOutline)
		gt.Value(t, created.HostType).Equal(types.HostTypeMorningShow)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
	})

	t.Run("List filters by content type", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		orgID := types.NewOrganizationID()
		for _, p := range []*model.ContentProject{
			{OrganizationID: orgID, Name: "Podcast A", Type: types.ContentTypePodcast},
			{OrganizationID: orgID, Name: "Blog B", Type: types.ContentTypeBlog},
			{OrganizationID: orgID, Name: "Podcast C", Type: types.ContentTypePodcast},
		} {
			_, err := repo.Project().Create(ctx, p)
			gt.NoError(t, err).Required()
		}

		podcasts, err := repo.Project().List(ctx, orgID, types.ContentTypePodcast)
		gt.NoError(t, err).Required()
		gt.Array(t, podcasts).Length(2)

		all, err := repo.Project().List(ctx, orgID, "")
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3)
	})

	t.Run("Update preserves CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, &model.ContentProject{
			OrganizationID: types.NewOrganizationID(),
			Name:           "Draft Blog",
			Type:           types.ContentTypeBlog,
		})
		gt.NoError(t, err).Required()

		created.Status = types.ContentStatusDraft
		updated, err := repo.Project().Update(ctx, created)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Status).Equal(types.ContentStatusDraft)
		gt.Value(t, updated.CreatedAt).Equal(created.CreatedAt)
	})

	t.Run("Update returns error for non-existent project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Project().Update(ctx, &model.ContentProject{
			ID:             types.NewProjectID(),
			OrganizationID: types.NewOrganizationID(),
			Name:           "Ghost",
			Type:           types.ContentTypeBlog,
		})
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})
}

func runContentItemRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and list by project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		projectID := types.NewProjectID()
		for _, title := range []string{"Episode 1", "Episode 2"} {
			_, err := repo.ContentItem().Create(ctx, &model.ContentItem{
				ProjectID: projectID,
				Title:     title,
				CreatedBy: "user-1",
			})
			gt.NoError(t, err).Required()
		}

		items, err := repo.ContentItem().ListByProject(ctx, projectID)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(2)
		gt.Value(t, items[0].Title).Equal("Episode 1")
		gt.Value(t, items[0].Status).Equal(types.ContentStatusOutline)
	})

	t.Run("Update stores content and progress", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.ContentItem().Create(ctx, &model.ContentItem{
			ProjectID: types.NewProjectID(),
			Title:     "Episode 1",
		})
		gt.NoError(t, err).Required()

		created.Content = map[string]any{"outline": []any{"intro", "topic", "outro"}}
		created.Progress = 40
		created.Status = types.ContentStatusDraft

		updated, err := repo.ContentItem().Update(ctx, created)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Progress).Equal(40)
		gt.Value(t, updated.Status).Equal(types.ContentStatusDraft)

		retrieved, err := repo.ContentItem().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Content).NotNil()
	})

	t.Run("Get returns error for non-existent item", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.ContentItem().Get(ctx, types.NewContentItemID())
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})
}

func TestMemoryProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, newFirestoreRepository)
}

func TestMemoryContentItemRepository(t *testing.T) {
	runContentItemRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreContentItemRepository(t *testing.T) {
	runContentItemRepositoryTest(t, newFirestoreRepository)
}
