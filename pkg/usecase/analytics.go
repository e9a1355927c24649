package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

// CreateAnalyticsSnapshot stores a point-in-time metrics capture.
func (uc *UseCases) CreateAnalyticsSnapshot(ctx context.Context, snapshot *model.AnalyticsSnapshot) (*model.AnalyticsSnapshot, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Analytics().Create(ctx, snapshot)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create analytics snapshot",
			goerr.V("organizationID", snapshot.OrganizationID),
			goerr.V("source", snapshot.Source),
		)
	}

	return created, nil
}

// ListAnalyticsSnapshots returns an organization's snapshots, newest first,
// optionally filtered by source.
func (uc *UseCases) ListAnalyticsSnapshots(ctx context.Context, orgID types.OrganizationID, source string) ([]*model.AnalyticsSnapshot, error) {
	snapshots, err := uc.repo.Analytics().List(ctx, orgID, source)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list analytics snapshots",
			goerr.V("organizationID", orgID),
		)
	}
	return snapshots, nil
}
