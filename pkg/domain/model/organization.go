package model

import (
	"time"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Organization is the billing and collaboration unit that owns content projects.
type Organization struct {
	ID          types.OrganizationID `json:"id"`
	Name        string               `json:"name"`
	BillingPlan types.BillingPlan    `json:"billingPlan,omitempty"`
	Settings    map[string]any       `json:"settings,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// Validate checks if the Organization is valid
func (o *Organization) Validate() error {
	if o.Name == "" {
		return goerr.New("organization name is required")
	}
	if o.BillingPlan != "" && !o.BillingPlan.IsValid() {
		return goerr.New("invalid billing plan", goerr.V("plan", o.BillingPlan))
	}
	return nil
}

// Membership links a user to an organization with a role.
type Membership struct {
	UserID         types.UserID         `json:"userId"`
	OrganizationID types.OrganizationID `json:"organizationId"`
	Role           types.Role           `json:"role"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// Validate checks if the Membership is valid
func (m *Membership) Validate() error {
	if m.UserID == "" {
		return goerr.New("membership user ID is required")
	}
	if m.OrganizationID == "" {
		return goerr.New("membership organization ID is required")
	}
	if !m.Role.IsValid() {
		return goerr.New("invalid membership role", goerr.V("role", m.Role))
	}
	return nil
}
