package repository

import "fmt"

// Persisted key layout. Kept in one place because the dashboard and any
// operational tooling read the same keys.
const (
	installationsIndexKey = "installations"
	webhookEventsKey      = "webhook_events"

	// webhookEventsMax bounds the audit trail; oldest entries are trimmed.
	webhookEventsMax = 100
)

func credentialKey(installationID string) string {
	return fmt.Sprintf("token:%s", installationID)
}

func installationKey(installationID string) string {
	return installationID
}

func resourceKey(installationID, resourceID string) string {
	return fmt.Sprintf("%s:resource:%s", installationID, resourceID)
}

func resourceIndexKey(installationID string) string {
	return fmt.Sprintf("%s:resources", installationID)
}

func projectIndexKey(projectID string) string {
	return fmt.Sprintf("project:%s", projectID)
}
