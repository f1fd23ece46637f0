package models

// TokenData is the stored credential for one installation, consulted on
// every upstream Vercel API call and deleted on uninstall.
type TokenData struct {
	AccessToken    string  `json:"access_token"`
	TokenType      string  `json:"token_type,omitempty"`
	InstallationID string  `json:"installation_id"`
	UserID         string  `json:"user_id,omitempty"`
	TeamID         *string `json:"team_id"`
}
