package api

// Config holds configuration for the Lair API client.
type Config struct {
	// URL is the base URL of the Lair server.
	URL string `mapstructure:"url" default:"http://localhost:3000"`
	// Token is the bearer token used to authenticate requests.
	Token string `mapstructure:"token" default:""`
	// ScannerID identifies this client on the server. A scanner is created when empty.
	ScannerID string `mapstructure:"scanner_id" default:""`
	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
