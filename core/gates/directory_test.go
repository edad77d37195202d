package gates

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/docksched/core/model"
)

func TestDefaultDirectory(t *testing.T) {
	d := Default()
	if len(d.IDs()) != 7 {
		t.Fatalf("expected 7 gates got %d", len(d.IDs()))
	}
	g, ok := d.Lookup(CourierGate)
	if !ok || g.Operation != model.OperationCourier || g.Ramp {
		t.Fatalf("bad courier gate %#v", g)
	}
	if !d.Contains("Brama W6") || d.Contains("Brama W2") {
		t.Fatalf("membership wrong")
	}
	if got := d.Unknown([]string{"Brama W9", "Brama W3", "Brama W2"}); len(got) != 2 || got[0] != "Brama W2" {
		t.Fatalf("unknown gates %v", got)
	}
}

func TestNewRejectsBadTables(t *testing.T) {
	cases := map[string][]Gate{
		"empty id":      {{ID: "", Operation: model.OperationLoad}},
		"bad operation": {{ID: "X", Operation: "fly"}},
		"duplicate":     append(DefaultGates(), Gate{ID: "Brama W1", Operation: model.OperationCourier}),
		"missing":       DefaultGates()[1:],
	}
	for name, gs := range cases {
		if _, err := New(gs); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestVisible(t *testing.T) {
	d := Default()
	items := []model.Appointment{
		{GateID: "Brama W3"}, {GateID: "Brama W5"}, {GateID: "Brama W8"},
	}
	vis := d.Visible([]string{"Brama W8"}, items)
	if len(vis) != 2 || vis[0].ID != "Brama W3" || vis[1].ID != "Brama W5" {
		t.Fatalf("visible %#v", vis)
	}
}

func TestDecodeDirectoryYAML(t *testing.T) {
	data := `gates:
  - {id: "Brama W1", operation: courier}
  - {id: "Brama W3", operation: load, ramp: true}
  - {id: "Brama W5", operation: unload, ramp: true}
  - {id: "Brama W8", operation: unload, ramp: true}
  - {id: "Brama W9", operation: unload}
`
	d, err := DecodeDirectory(bytes.NewBufferString(data), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !d.Contains("Brama W9") {
		t.Fatalf("extra gate missing")
	}
	if _, err := DecodeDirectory(bytes.NewBufferString("{}"), "toml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestLoadDirectoryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gates.json")
	data := `{"gates":[{"id":"Brama W1","operation":"courier"},{"id":"Brama W3","operation":"load"},{"id":"Brama W5","operation":"unload"},{"id":"Brama W8","operation":"unload"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := LoadDirectory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(d.All()) != 4 {
		t.Fatalf("expected 4 gates")
	}
	if _, err := LoadDirectory(path + ".missing"); err == nil {
		t.Fatalf("expected error")
	}
}
