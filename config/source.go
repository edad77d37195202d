package config

import (
	"fmt"

	"github.com/kilianp07/docksched/infra/sharepoint"
)

// SourceConfig selects the upstream list. An empty mode serves stored
// days only.
type SourceConfig struct {
	Mode       string            `json:"mode"`
	SharePoint sharepoint.Config `json:"sharepoint"`
	File       FileSourceConfig  `json:"file"`
}

type FileSourceConfig struct {
	Path string `json:"path"`
}

func (c SourceConfig) Validate() error {
	switch c.Mode {
	case "":
		return nil
	case "sharepoint":
		if c.SharePoint.SiteURL == "" || c.SharePoint.ListName == "" {
			return fmt.Errorf("sharepoint requires site_url and list_name")
		}
		return nil
	case "file":
		if c.File.Path == "" {
			return fmt.Errorf("file requires path")
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %s", c.Mode)
	}
}
