package domain

// APIClient is a registered integration allowed to call the gateway.
type APIClient struct {
	ID            int64  `json:"id"`
	APIKey        string `json:"api_key"`
	APISecretHash string `json:"-"`
	RedirectURI   string `json:"redirect_uri,omitempty"`
	ConsentType   string `json:"consent_type,omitempty"`
	// PermissionsEnabled restricts the client to the routes listed in its permission entries.
	PermissionsEnabled bool `json:"permissions_enabled"`
}
