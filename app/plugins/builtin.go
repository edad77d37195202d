package plugins

import (
	"github.com/kilianp07/docksched/config"
	"github.com/kilianp07/docksched/core/audit"
	"github.com/kilianp07/docksched/core/persist"
	"github.com/kilianp07/docksched/core/source"
	"github.com/kilianp07/docksched/infra/filesource"
	infrapersist "github.com/kilianp07/docksched/infra/persist"
	"github.com/kilianp07/docksched/infra/sharepoint"
)

func init() {
	RegisterSource("sharepoint", func(cfg config.SourceConfig) (source.Source, error) {
		return sharepoint.New(cfg.SharePoint)
	})
	RegisterSource("file", func(cfg config.SourceConfig) (source.Source, error) {
		return filesource.New(cfg.File.Path), nil
	})

	RegisterStore("memory", func(config.PersistConfig) (persist.Store, error) {
		return persist.NewMemoryStore(), nil
	})
	RegisterStore("sqlite", func(cfg config.PersistConfig) (persist.Store, error) {
		return infrapersist.NewSQLiteStore(cfg.Path)
	})

	RegisterAuditStore("jsonl", func(cfg config.AuditConfig) (audit.LogStore, error) {
		return audit.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	})
	RegisterAuditStore("sqlite", func(cfg config.AuditConfig) (audit.LogStore, error) {
		return audit.NewSQLiteStore(cfg.Path)
	})
}
