package types_test

import (
	"testing"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestIntegrationProviderIsValid(t *testing.T) {
	for _, p := range types.AllIntegrationProviders() {
		gt.True(t, p.IsValid())
	}
	gt.False(t, types.IntegrationProvider("slack").IsValid())
	gt.False(t, types.IntegrationProvider("").IsValid())
}

func TestIntegrationStatusIsValid(t *testing.T) {
	valid := []types.IntegrationStatus{
		types.IntegrationStatusConnected,
		types.IntegrationStatusNeedsOAuth,
		types.IntegrationStatusError,
		types.IntegrationStatusExpired,
		types.IntegrationStatusDisabled,
		types.IntegrationStatusSetupRequired,
	}
	for _, s := range valid {
		gt.True(t, s.IsValid())
	}
	gt.False(t, types.IntegrationStatus("pending").IsValid())
}

func TestContentEnums(t *testing.T) {
	gt.True(t, types.ContentTypePodcast.IsValid())
	gt.False(t, types.ContentType("video").IsValid())

	gt.True(t, types.ContentStatusOutline.IsValid())
	gt.False(t, types.ContentStatus("done").IsValid())

	gt.True(t, types.HostTypeMorningShow.IsValid())
	gt.False(t, types.HostType("panel").IsValid())

	gt.True(t, types.RoleOwner.IsValid())
	gt.False(t, types.Role("guest").IsValid())

	gt.True(t, types.PlanStarter.IsValid())
	gt.False(t, types.BillingPlan("free").IsValid())
}

func TestNewIDsAreUnique(t *testing.T) {
	gt.NotEqual(t, types.NewOrganizationID(), types.NewOrganizationID())
	gt.NotEqual(t, types.NewProjectID(), types.NewProjectID())
	gt.NotEqual(t, types.NewIntegrationID(), types.NewIntegrationID())
}
