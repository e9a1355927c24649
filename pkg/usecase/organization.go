package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

// CreateOrganization creates an organization owned by the given user.
func (uc *UseCases) CreateOrganization(ctx context.Context, userID types.UserID, org *model.Organization) (*model.Organization, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Organization().Create(ctx, org, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create organization",
			goerr.V("name", org.Name),
		)
	}

	return created, nil
}

// ListOrganizations returns the organizations the user is a member of.
func (uc *UseCases) ListOrganizations(ctx context.Context, userID types.UserID) ([]*model.Organization, error) {
	_, orgs, err := uc.repo.Organization().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list organizations",
			goerr.V("userID", userID),
		)
	}
	return orgs, nil
}

// GetOrganization returns one organization, but only to its members.
func (uc *UseCases) GetOrganization(ctx context.Context, userID types.UserID, orgID types.OrganizationID) (*model.Organization, error) {
	memberships, _, err := uc.repo.Organization().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check membership",
			goerr.V("userID", userID),
		)
	}

	member := false
	for _, m := range memberships {
		if m.OrganizationID == orgID {
			member = true
			break
		}
	}
	if !member {
		return nil, goerr.New("not a member of the organization",
			goerr.V("userID", userID),
			goerr.V("organizationID", orgID),
		)
	}

	org, err := uc.repo.Organization().Get(ctx, orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get organization",
			goerr.V("organizationID", orgID),
		)
	}

	return org, nil
}
