package webhook

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/entrolytics/vercel-marketplace/app/models"
)

// Recognized Vercel webhook event types.
const (
	EventConfigurationRemoved = "integration-configuration.removed"
	EventScopeChangeConfirmed = "integration-configuration.scope-change-confirmed"
	EventProjectCreated       = "project.created"
	EventProjectRemoved       = "project.removed"
	EventDeploymentCreated    = "deployment.created"
	EventDeploymentSucceeded  = "deployment.succeeded"
)

// ErrUnknownEventType marks a delivery whose type is outside the recognized
// union; such deliveries are still audited, just never dispatched.
var ErrUnknownEventType = errors.New("unknown webhook event type")

// ConfigurationPayload carries the installation id for configuration events.
type ConfigurationPayload struct {
	Configuration struct {
		ID string `json:"id"`
	} `json:"configuration"`
}

// ProjectPayload is shared by project.created and project.removed.
type ProjectPayload struct {
	Project struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	} `json:"project"`
}

// DeploymentPayload is the deployment.created / deployment.succeeded shape.
type DeploymentPayload struct {
	Deployment struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
		URL  string `json:"url,omitempty"`
		Meta struct {
			GithubCommitSha string `json:"githubCommitSha,omitempty"`
			GithubCommitRef string `json:"githubCommitRef,omitempty"`
		} `json:"meta,omitempty"`
	} `json:"deployment"`
	Project *struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	} `json:"project,omitempty"`
	InstallationIDs []string `json:"installationIds,omitempty"`
}

// Event is a classified webhook delivery. Exactly one payload field is set,
// matching Type.
type Event struct {
	Envelope models.WebhookEnvelope

	Configuration *ConfigurationPayload
	Project       *ProjectPayload
	Deployment    *DeploymentPayload
}

func (e *Event) ID() string       { return e.Envelope.ID }
func (e *Event) Type() string     { return e.Envelope.Type }
func (e *Event) CreatedAt() int64 { return e.Envelope.CreatedAt }

// ParseEvent classifies a verified JSON body against the known event union.
// ErrUnknownEventType means the envelope may still be valid (audit it via
// ParseEnvelope); any other error means the delivery doesn't satisfy the
// union's payload requirements and is treated the same way.
func ParseEvent(raw []byte) (*Event, error) {
	envelope, err := ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	event := &Event{Envelope: *envelope}
	switch envelope.Type {
	case EventConfigurationRemoved, EventScopeChangeConfirmed:
		var payload ConfigurationPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		if envelope.Type == EventConfigurationRemoved && payload.Configuration.ID == "" {
			return nil, errors.New("configuration.id missing in removal event")
		}
		event.Configuration = &payload
	case EventProjectCreated, EventProjectRemoved:
		var payload ProjectPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		event.Project = &payload
	case EventDeploymentCreated, EventDeploymentSucceeded:
		var payload DeploymentPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		if payload.Deployment.ID == "" {
			return nil, errors.New("deployment.id missing in deployment event")
		}
		event.Deployment = &payload
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, envelope.Type)
	}
	return event, nil
}

// ParseEnvelope validates the minimal delivery shape every event (known or
// not) must satisfy before it enters the audit trail.
func ParseEnvelope(raw []byte) (*models.WebhookEnvelope, error) {
	var envelope models.WebhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return &envelope, nil
}
