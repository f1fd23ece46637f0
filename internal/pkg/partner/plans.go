package partner

import "github.com/entrolytics/vercel-marketplace/app/models"

// Entrolytics billing plans. The catalog is fixed at compile time; resources
// snapshot the plan they were provisioned under.
var billingPlans = []models.BillingPlan{
	{
		ID:                    "free",
		Scope:                 models.PlanScopeResource,
		Name:                  "Free",
		Cost:                  "Free",
		Description:           "Basic analytics for personal projects",
		Type:                  models.PlanTypeSubscription,
		PaymentMethodRequired: false,
		Details: []models.PlanDetail{
			{Label: "Page views", Value: "10,000/month"},
			{Label: "Data retention", Value: "3 months"},
		},
		HighlightedDetails: []models.PlanDetail{
			{Label: "Websites", Value: "1"},
			{Label: "Real-time", Value: "Yes"},
		},
		MaxResources:  1,
		EffectiveDate: "2024-01-01T00:00:00Z",
	},
	{
		ID:                    "pro",
		Scope:                 models.PlanScopeResource,
		Name:                  "Pro",
		Cost:                  "$9/month",
		Description:           "Advanced analytics for growing projects",
		Type:                  models.PlanTypeSubscription,
		PaymentMethodRequired: true,
		Details: []models.PlanDetail{
			{Label: "Page views", Value: "100,000/month"},
			{Label: "Data retention", Value: "12 months"},
			{Label: "Custom events", Value: "Unlimited"},
		},
		HighlightedDetails: []models.PlanDetail{
			{Label: "Websites", Value: "10"},
			{Label: "Real-time", Value: "Yes"},
		},
		EffectiveDate: "2024-01-01T00:00:00Z",
	},
}

// Plans returns a copy of the catalog so callers cannot mutate it.
func Plans() []models.BillingPlan {
	plans := make([]models.BillingPlan, len(billingPlans))
	copy(plans, billingPlans)
	return plans
}

// PlanByID resolves a catalog entry by id; the returned plan is a copy.
func PlanByID(id string) (*models.BillingPlan, bool) {
	for _, plan := range billingPlans {
		if plan.ID == id {
			p := plan
			return &p, true
		}
	}
	return nil, false
}
