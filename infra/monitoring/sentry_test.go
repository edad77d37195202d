package monitoring

import (
	"testing"

	"github.com/kilianp07/docksched/config"
	coremon "github.com/kilianp07/docksched/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor, got %T", m)
	}
}

func TestNewSentryMonitorRejectsBadDSN(t *testing.T) {
	if _, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"}); err == nil {
		t.Fatal("expected DSN parse error")
	}
}
