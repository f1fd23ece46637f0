package models

import "github.com/go-playground/validator/v10"

const (
	InstallationTypeMarketplace = "marketplace"
	InstallationTypeExternal    = "external"
)

// Credentials is the token material Vercel hands us inside the install
// request. TeamID is nullable: personal installations carry no team scope.
type Credentials struct {
	AccessToken    string  `json:"access_token" validate:"required"`
	RefreshToken   string  `json:"refresh_token,omitempty"`
	TokenType      string  `json:"token_type" validate:"required"`
	InstallationID string  `json:"installation_id,omitempty"`
	UserID         string  `json:"user_id,omitempty"`
	TeamID         *string `json:"team_id,omitempty"`
}

type AcceptedPolicy struct {
	ID         string `json:"id" validate:"required"`
	AcceptedAt string `json:"acceptedAt" validate:"required"`
}

// Installation binds one Vercel account to this product. The record is kept
// after uninstall; DeletedAt marks it absent for all readers.
type Installation struct {
	Credentials      Credentials      `json:"credentials"`
	AcceptedPolicies []AcceptedPolicy `json:"acceptedPolicies,omitempty"`
	BillingPlanID    string           `json:"billingPlanId"`
	Type             string           `json:"type"`
	CreatedAt        int64            `json:"createdAt,omitempty"`
	DeletedAt        *int64           `json:"deletedAt,omitempty"`
}

func (i *Installation) IsDeleted() bool {
	return i.DeletedAt != nil
}

// InstallIntegrationRequest is the body of PUT /v1/installations/:id.
type InstallIntegrationRequest struct {
	Credentials      Credentials      `json:"credentials" validate:"required"`
	AcceptedPolicies []AcceptedPolicy `json:"acceptedPolicies,omitempty" validate:"omitempty,dive"`
	BillingPlanID    string           `json:"billingPlanId,omitempty"`
}

func (r *InstallIntegrationRequest) Validate() error {
	v := validator.New()

	return v.Struct(r)
}
