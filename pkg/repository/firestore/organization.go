package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type organizationDocument struct {
	ID          string         `firestore:"id"`
	Name        string         `firestore:"name"`
	BillingPlan string         `firestore:"billing_plan"`
	Settings    map[string]any `firestore:"settings,omitempty"`
	CreatedAt   time.Time      `firestore:"created_at"`
	UpdatedAt   time.Time      `firestore:"updated_at"`
}

type membershipDocument struct {
	UserID         string    `firestore:"user_id"`
	OrganizationID string    `firestore:"organization_id"`
	Role           string    `firestore:"role"`
	CreatedAt      time.Time `firestore:"created_at"`
}

type organizationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newOrganizationRepository(client *firestore.Client) *organizationRepository {
	return &organizationRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *organizationRepository) organizationsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_organizations"
	}
	return "organizations"
}

func (r *organizationRepository) membershipsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_memberships"
	}
	return "memberships"
}

func organizationToDocument(org *model.Organization) *organizationDocument {
	return &organizationDocument{
		ID:          string(org.ID),
		Name:        org.Name,
		BillingPlan: string(org.BillingPlan),
		Settings:    org.Settings,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}
}

func organizationToModel(doc *organizationDocument) *model.Organization {
	return &model.Organization{
		ID:          types.OrganizationID(doc.ID),
		Name:        doc.Name,
		BillingPlan: types.BillingPlan(doc.BillingPlan),
		Settings:    doc.Settings,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func membershipToModel(doc *membershipDocument) *model.Membership {
	return &model.Membership{
		UserID:         types.UserID(doc.UserID),
		OrganizationID: types.OrganizationID(doc.OrganizationID),
		Role:           types.Role(doc.Role),
		CreatedAt:      doc.CreatedAt,
	}
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization, ownerID types.UserID) (*model.Organization, error) {
	now := time.Now().UTC()
	if org.ID == "" {
		org.ID = types.NewOrganizationID()
	}
	if org.BillingPlan == "" {
		org.BillingPlan = types.PlanStarter
	}
	org.CreatedAt = now
	org.UpdatedAt = now

	doc := organizationToDocument(org)
	membership := &membershipDocument{
		UserID:         string(ownerID),
		OrganizationID: string(org.ID),
		Role:           string(types.RoleOwner),
		CreatedAt:      now,
	}

	// Organization and owner membership are written atomically
	batch := r.client.Batch()
	batch.Set(r.client.Collection(r.organizationsCollection()).Doc(string(org.ID)), doc)
	batch.Set(r.client.Collection(r.membershipsCollection()).Doc(string(ownerID)+":"+string(org.ID)), membership)
	if _, err := batch.Commit(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to create organization", goerr.V("id", org.ID))
	}

	return organizationToModel(doc), nil
}

func (r *organizationRepository) Get(ctx context.Context, id types.OrganizationID) (*model.Organization, error) {
	docRef := r.client.Collection(r.organizationsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "organization not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get organization", goerr.V("id", id))
	}

	var orgDoc organizationDocument
	if err := doc.DataTo(&orgDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal organization", goerr.V("id", id))
	}

	return organizationToModel(&orgDoc), nil
}

func (r *organizationRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Membership, []*model.Organization, error) {
	iter := r.client.Collection(r.membershipsCollection()).
		Where("user_id", "==", string(userID)).
		Documents(ctx)
	defer iter.Stop()

	var memberships []*model.Membership
	var orgs []*model.Organization
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to iterate memberships", goerr.V("userID", userID))
		}

		var memberDoc membershipDocument
		if err := doc.DataTo(&memberDoc); err != nil {
			return nil, nil, goerr.Wrap(err, "failed to unmarshal membership", goerr.V("userID", userID))
		}

		org, err := r.Get(ctx, types.OrganizationID(memberDoc.OrganizationID))
		if err != nil {
			// Skip memberships pointing at deleted organizations
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, nil, err
		}

		memberships = append(memberships, membershipToModel(&memberDoc))
		orgs = append(orgs, org)
	}

	return memberships, orgs, nil
}
