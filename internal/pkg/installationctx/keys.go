package installationctx

// Shared Locals keys used across controllers and middlewares
const (
	KeyClaims         = "INSTALLATION_CLAIMS"
	KeyInstallationID = "installation_id"
)
