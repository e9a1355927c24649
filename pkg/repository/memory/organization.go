package memory

import (
	"context"
	"sync"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type organizationRepository struct {
	mu          sync.RWMutex
	orgs        map[types.OrganizationID]*model.Organization
	memberships []*model.Membership
}

func newOrganizationRepository() *organizationRepository {
	return &organizationRepository{
		orgs: make(map[types.OrganizationID]*model.Organization),
	}
}

func copyOrganization(org *model.Organization) *model.Organization {
	copied := *org
	copied.Settings = copyMap(org.Settings)
	return &copied
}

func copyMembership(m *model.Membership) *model.Membership {
	copied := *m
	return &copied
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization, ownerID types.UserID) (*model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyOrganization(org)
	if created.ID == "" {
		created.ID = types.NewOrganizationID()
	}
	if created.BillingPlan == "" {
		created.BillingPlan = types.PlanStarter
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.orgs[created.ID] = created
	r.memberships = append(r.memberships, &model.Membership{
		UserID:         ownerID,
		OrganizationID: created.ID,
		Role:           types.RoleOwner,
		CreatedAt:      now,
	})

	return copyOrganization(created), nil
}

func (r *organizationRepository) Get(ctx context.Context, id types.OrganizationID) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.orgs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "organization not found", goerr.V("id", id))
	}

	return copyOrganization(org), nil
}

func (r *organizationRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Membership, []*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var memberships []*model.Membership
	var orgs []*model.Organization
	for _, m := range r.memberships {
		if m.UserID != userID {
			continue
		}
		org, exists := r.orgs[m.OrganizationID]
		if !exists {
			continue
		}
		memberships = append(memberships, copyMembership(m))
		orgs = append(orgs, copyOrganization(org))
	}

	return memberships, orgs, nil
}
