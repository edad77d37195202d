package config

import "fmt"

// PersistConfig selects where resolved days are stored.
type PersistConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

func (c *PersistConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "sqlite"
	}
	if c.Path == "" && c.Backend == "sqlite" {
		c.Path = "docksched.db"
	}
}

func (c PersistConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
}
