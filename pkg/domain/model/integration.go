package model

import (
	"time"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Integration holds a user's connection to an external provider. Each user has
// at most one integration per provider.
type Integration struct {
	ID            types.IntegrationID
	UserID        types.UserID
	Provider      types.IntegrationProvider
	Status        types.IntegrationStatus
	Credentials   *Credentials
	Settings      map[string]any
	LastSync      time.Time
	LastValidated time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks if the Integration is valid
func (i *Integration) Validate() error {
	if i.UserID == "" {
		return goerr.New("integration user ID is required")
	}
	if !i.Provider.IsValid() {
		return goerr.New("invalid integration provider", goerr.V("provider", i.Provider))
	}
	if i.Status != "" && !i.Status.IsValid() {
		return goerr.New("invalid integration status", goerr.V("status", i.Status))
	}
	return nil
}

// Credentials is the provider-specific secret material. API-key providers fill
// APIKey (plus BaseID for Airtable, Domain for Freshdesk); OAuth providers
// fill OAuth.
type Credentials struct {
	APIKey string       `json:"api_key,omitempty" masq:"secret"`
	BaseID string       `json:"base_id,omitempty"`
	Domain string       `json:"domain,omitempty"`
	OAuth  *OAuthTokens `json:"oauth,omitempty"`
}

// OAuthTokens is a standard refresh-token grant token set.
type OAuthTokens struct {
	AccessToken   string    `json:"access_token" masq:"secret"`
	RefreshToken  string    `json:"refresh_token" masq:"secret"`
	ClientID      string    `json:"client_id"`
	ClientSecret  string    `json:"client_secret" masq:"secret"`
	ExpiresAt     time.Time `json:"expires_at"`
	LastRefreshed time.Time `json:"last_refreshed,omitempty"`
}

// NeedsRefresh reports whether the access token expires within the buffer.
// A zero ExpiresAt means the expiry is unknown and no proactive refresh is done.
func (t *OAuthTokens) NeedsRefresh(now time.Time, buffer time.Duration) bool {
	if t == nil || t.ExpiresAt.IsZero() {
		return false
	}
	return !t.ExpiresAt.Add(-buffer).After(now)
}
