package config

// APIConfig configures the HTTP listener. A non-empty Token is required
// as a bearer token on every /api request.
type APIConfig struct {
	Address        string   `json:"address"`
	Token          string   `json:"token"`
	AllowedOrigins []string `json:"allowed_origins"`
}

func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
