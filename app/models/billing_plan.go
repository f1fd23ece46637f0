package models

const (
	PlanScopeResource     = "resource"
	PlanScopeInstallation = "installation"

	PlanTypeSubscription = "subscription"
	PlanTypePrepayment   = "prepayment"
)

// PlanDetail is a single descriptive line shown on a billing plan card.
type PlanDetail struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// BillingPlan is a static catalog entry. Plans are never created or deleted
// at runtime; resources snapshot the full plan at provisioning time.
type BillingPlan struct {
	ID                    string       `json:"id"`
	Scope                 string       `json:"scope"`
	Name                  string       `json:"name"`
	Cost                  string       `json:"cost"`
	Description           string       `json:"description"`
	Type                  string       `json:"type"`
	PaymentMethodRequired bool         `json:"paymentMethodRequired"`
	Details               []PlanDetail `json:"details,omitempty"`
	HighlightedDetails    []PlanDetail `json:"highlightedDetails,omitempty"`
	MaxResources          int          `json:"maxResources,omitempty"`
	EffectiveDate         string       `json:"effectiveDate,omitempty"`
}
