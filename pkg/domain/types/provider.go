package types

// IntegrationProvider represents an external service a user can connect.
type IntegrationProvider string

const (
	ProviderAirtable  IntegrationProvider = "airtable"
	ProviderBigin     IntegrationProvider = "bigin"
	ProviderOtter     IntegrationProvider = "otter"
	ProviderOpenAI    IntegrationProvider = "openai"
	ProviderOutlook   IntegrationProvider = "outlook"
	ProviderWordPress IntegrationProvider = "wordpress"
	ProviderFreshdesk IntegrationProvider = "freshdesk"
)

// AllIntegrationProviders returns all valid providers
func AllIntegrationProviders() []IntegrationProvider {
	return []IntegrationProvider{
		ProviderAirtable,
		ProviderBigin,
		ProviderOtter,
		ProviderOpenAI,
		ProviderOutlook,
		ProviderWordPress,
		ProviderFreshdesk,
	}
}

// IsValid checks if the provider is a known one
func (p IntegrationProvider) IsValid() bool {
	switch p {
	case ProviderAirtable,
		ProviderBigin,
		ProviderOtter,
		ProviderOpenAI,
		ProviderOutlook,
		ProviderWordPress,
		ProviderFreshdesk:
		return true
	default:
		return false
	}
}

func (p IntegrationProvider) String() string {
	return string(p)
}

// IntegrationStatus represents the lifecycle state of a connected integration.
type IntegrationStatus string

const (
	IntegrationStatusConnected     IntegrationStatus = "connected"
	IntegrationStatusNeedsOAuth    IntegrationStatus = "needs_oauth"
	IntegrationStatusError         IntegrationStatus = "error"
	IntegrationStatusExpired       IntegrationStatus = "expired"
	IntegrationStatusDisabled      IntegrationStatus = "disabled"
	IntegrationStatusSetupRequired IntegrationStatus = "setup_required"
)

// IsValid checks if the integration status is valid
func (s IntegrationStatus) IsValid() bool {
	switch s {
	case IntegrationStatusConnected,
		IntegrationStatusNeedsOAuth,
		IntegrationStatusError,
		IntegrationStatusExpired,
		IntegrationStatusDisabled,
		IntegrationStatusSetupRequired:
		return true
	default:
		return false
	}
}

func (s IntegrationStatus) String() string {
	return string(s)
}
