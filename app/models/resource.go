package models

import "github.com/go-playground/validator/v10"

const (
	ResourceStatusReady     = "ready"
	ResourceStatusPending   = "pending"
	ResourceStatusError     = "error"
	ResourceStatusSuspended = "suspended"
)

// ResourceMetadata links a resource to the Entrolytics website backing it and
// optionally to the Vercel project receiving env-var injection.
type ResourceMetadata struct {
	WebsiteID string `json:"websiteId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Domain    string `json:"domain,omitempty"`
}

type NotificationAction struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type ResourceNotification struct {
	Level   string              `json:"level"`
	Message string              `json:"message"`
	Action  *NotificationAction `json:"action,omitempty"`
}

// Resource is a provisioned Entrolytics website owned by exactly one
// installation. BillingPlan is a snapshot taken at provisioning time, not a
// live reference into the catalog.
type Resource struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Name         string                `json:"name"`
	ProductID    string                `json:"productId"`
	BillingPlan  BillingPlan           `json:"billingPlan"`
	Metadata     *ResourceMetadata     `json:"metadata,omitempty"`
	Notification *ResourceNotification `json:"notification,omitempty"`
}

// ProvisionResourceRequest is the body of POST /v1/installations/:id/resources.
type ProvisionResourceRequest struct {
	ProductID     string            `json:"productId" validate:"required"`
	Name          string            `json:"name" validate:"required"`
	Metadata      *ResourceMetadata `json:"metadata,omitempty"`
	BillingPlanID string            `json:"billingPlanId" validate:"required"`
}

func (r *ProvisionResourceRequest) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// Secret is a key/value pair surfaced to the user after provisioning. The
// same values are injected as project env vars when a projectId is known.
type Secret struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProvisionedResource is the provisioning response: the stored resource plus
// its secrets. Secrets are returned whether or not env-var injection worked.
type ProvisionedResource struct {
	Resource
	Secrets []Secret `json:"secrets"`
}
