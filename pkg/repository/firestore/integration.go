package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type integrationDocument struct {
	ID            string               `firestore:"id"`
	UserID        string               `firestore:"user_id"`
	Provider      string               `firestore:"provider"`
	Status        string               `firestore:"status"`
	Credentials   *credentialsDocument `firestore:"credentials,omitempty"`
	Settings      map[string]any       `firestore:"settings,omitempty"`
	LastSync      time.Time            `firestore:"last_sync,omitempty"`
	LastValidated time.Time            `firestore:"last_validated,omitempty"`
	CreatedAt     time.Time            `firestore:"created_at"`
	UpdatedAt     time.Time            `firestore:"updated_at"`
}

type credentialsDocument struct {
	APIKey string              `firestore:"api_key,omitempty"`
	BaseID string              `firestore:"base_id,omitempty"`
	OAuth  *oauthTokenDocument `firestore:"oauth,omitempty"`
}

type oauthTokenDocument struct {
	AccessToken   string    `firestore:"access_token"`
	RefreshToken  string    `firestore:"refresh_token"`
	ClientID      string    `firestore:"client_id"`
	ClientSecret  string    `firestore:"client_secret"`
	ExpiresAt     time.Time `firestore:"expires_at,omitempty"`
	LastRefreshed time.Time `firestore:"last_refreshed,omitempty"`
}

type integrationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newIntegrationRepository(client *firestore.Client) *integrationRepository {
	return &integrationRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *integrationRepository) integrationsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_integrations"
	}
	return "integrations"
}

// integrationDocID keeps the (user, provider) uniqueness at the document level
func integrationDocID(userID types.UserID, provider types.IntegrationProvider) string {
	return string(userID) + ":" + string(provider)
}

func integrationToDocument(i *model.Integration) *integrationDocument {
	doc := &integrationDocument{
		ID:            string(i.ID),
		UserID:        string(i.UserID),
		Provider:      string(i.Provider),
		Status:        string(i.Status),
		Settings:      i.Settings,
		LastSync:      i.LastSync,
		LastValidated: i.LastValidated,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}

	if i.Credentials != nil {
		doc.Credentials = &credentialsDocument{
			APIKey: i.Credentials.APIKey,
			BaseID: i.Credentials.BaseID,
		}
		if i.Credentials.OAuth != nil {
			doc.Credentials.OAuth = &oauthTokenDocument{
				AccessToken:   i.Credentials.OAuth.AccessToken,
				RefreshToken:  i.Credentials.OAuth.RefreshToken,
				ClientID:      i.Credentials.OAuth.ClientID,
				ClientSecret:  i.Credentials.OAuth.ClientSecret,
				ExpiresAt:     i.Credentials.OAuth.ExpiresAt,
				LastRefreshed: i.Credentials.OAuth.LastRefreshed,
			}
		}
	}

	return doc
}

func integrationToModel(doc *integrationDocument) *model.Integration {
	i := &model.Integration{
		ID:            types.IntegrationID(doc.ID),
		UserID:        types.UserID(doc.UserID),
		Provider:      types.IntegrationProvider(doc.Provider),
		Status:        types.IntegrationStatus(doc.Status),
		Settings:      doc.Settings,
		LastSync:      doc.LastSync,
		LastValidated: doc.LastValidated,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}

	if doc.Credentials != nil {
		i.Credentials = &model.Credentials{
			APIKey: doc.Credentials.APIKey,
			BaseID: doc.Credentials.BaseID,
		}
		if doc.Credentials.OAuth != nil {
			i.Credentials.OAuth = &model.OAuthTokens{
				AccessToken:   doc.Credentials.OAuth.AccessToken,
				RefreshToken:  doc.Credentials.OAuth.RefreshToken,
				ClientID:      doc.Credentials.OAuth.ClientID,
				ClientSecret:  doc.Credentials.OAuth.ClientSecret,
				ExpiresAt:     doc.Credentials.OAuth.ExpiresAt,
				LastRefreshed: doc.Credentials.OAuth.LastRefreshed,
			}
		}
	}

	return i
}

func (r *integrationRepository) Upsert(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	docRef := r.client.Collection(r.integrationsCollection()).
		Doc(integrationDocID(integration.UserID, integration.Provider))

	now := time.Now().UTC()
	doc, err := docRef.Get(ctx)
	if err == nil {
		var existing integrationDocument
		if err := doc.DataTo(&existing); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal integration",
				goerr.V("userID", integration.UserID), goerr.V("provider", integration.Provider))
		}
		integration.ID = types.IntegrationID(existing.ID)
		integration.CreatedAt = existing.CreatedAt
	} else if status.Code(err) == codes.NotFound {
		if integration.ID == "" {
			integration.ID = types.NewIntegrationID()
		}
		integration.CreatedAt = now
	} else {
		return nil, goerr.Wrap(err, "failed to get integration",
			goerr.V("userID", integration.UserID), goerr.V("provider", integration.Provider))
	}
	if integration.Status == "" {
		integration.Status = types.IntegrationStatusSetupRequired
	}
	integration.UpdatedAt = now

	upserted := integrationToDocument(integration)
	if _, err := docRef.Set(ctx, upserted); err != nil {
		return nil, goerr.Wrap(err, "failed to upsert integration",
			goerr.V("userID", integration.UserID), goerr.V("provider", integration.Provider))
	}

	return integrationToModel(upserted), nil
}

func (r *integrationRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Integration, error) {
	iter := r.client.Collection(r.integrationsCollection()).
		Where("user_id", "==", string(userID)).
		Documents(ctx)
	defer iter.Stop()

	var integrations []*model.Integration
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate integrations", goerr.V("userID", userID))
		}

		var integDoc integrationDocument
		if err := doc.DataTo(&integDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal integration", goerr.V("userID", userID))
		}

		integrations = append(integrations, integrationToModel(&integDoc))
	}

	return integrations, nil
}

func (r *integrationRepository) ListAll(ctx context.Context) ([]*model.Integration, error) {
	iter := r.client.Collection(r.integrationsCollection()).Documents(ctx)
	defer iter.Stop()

	var integrations []*model.Integration
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate integrations")
		}

		var integDoc integrationDocument
		if err := doc.DataTo(&integDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal integration")
		}

		integrations = append(integrations, integrationToModel(&integDoc))
	}

	return integrations, nil
}

func (r *integrationRepository) GetByProvider(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) (*model.Integration, error) {
	docRef := r.client.Collection(r.integrationsCollection()).Doc(integrationDocID(userID, provider))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "integration not found",
				goerr.V("userID", userID), goerr.V("provider", provider))
		}
		return nil, goerr.Wrap(err, "failed to get integration",
			goerr.V("userID", userID), goerr.V("provider", provider))
	}

	var integDoc integrationDocument
	if err := doc.DataTo(&integDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal integration",
			goerr.V("userID", userID), goerr.V("provider", provider))
	}

	return integrationToModel(&integDoc), nil
}

func (r *integrationRepository) Delete(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) error {
	docRef := r.client.Collection(r.integrationsCollection()).Doc(integrationDocID(userID, provider))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "integration not found",
				goerr.V("userID", userID), goerr.V("provider", provider))
		}
		return goerr.Wrap(err, "failed to get integration",
			goerr.V("userID", userID), goerr.V("provider", provider))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete integration",
			goerr.V("userID", userID), goerr.V("provider", provider))
	}

	return nil
}
