// Package plugins maps configuration names to the upstream sources,
// persistence backends and audit stores the service can run with.
package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/docksched/config"
	"github.com/kilianp07/docksched/core/audit"
	"github.com/kilianp07/docksched/core/persist"
	"github.com/kilianp07/docksched/core/source"
)

// SourceFactory builds the upstream feed selected by source.mode.
type SourceFactory func(cfg config.SourceConfig) (source.Source, error)

// StoreFactory builds the day store selected by persist.backend.
type StoreFactory func(cfg config.PersistConfig) (persist.Store, error)

// AuditFactory builds the audit trail selected by audit.backend.
type AuditFactory func(cfg config.AuditConfig) (audit.LogStore, error)

var (
	Sources     = map[string]SourceFactory{}
	Stores      = map[string]StoreFactory{}
	AuditStores = map[string]AuditFactory{}
)

func RegisterSource(name string, f SourceFactory)     { Sources[name] = f }
func RegisterStore(name string, f StoreFactory)       { Stores[name] = f }
func RegisterAuditStore(name string, f AuditFactory) { AuditStores[name] = f }

// NewSource returns nil without error when no mode is configured.
func NewSource(cfg config.SourceConfig) (source.Source, error) {
	if cfg.Mode == "" {
		return nil, nil
	}
	f, ok := Sources[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("unknown source mode %q (known: %v)", cfg.Mode, keys(Sources))
	}
	return f(cfg)
}

func NewStore(cfg config.PersistConfig) (persist.Store, error) {
	f, ok := Stores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown persist backend %q (known: %v)", cfg.Backend, keys(Stores))
	}
	return f(cfg)
}

func NewAuditStore(cfg config.AuditConfig) (audit.LogStore, error) {
	f, ok := AuditStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown audit backend %q (known: %v)", cfg.Backend, keys(AuditStores))
	}
	return f(cfg)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
