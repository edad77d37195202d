package factory

import (
	"testing"
	"time"
)

type sink struct {
	Port    int
	Timeout time.Duration
}

type sinkConf struct {
	Port    int           `json:"port"`
	Timeout time.Duration `json:"timeout"`
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*sink]()
	if err := reg.Register("s", func(conf map[string]any) (*sink, error) {
		var c sinkConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sink{Port: c.Port, Timeout: c.Timeout}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"port": "9100", "timeout": "3s"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Port != 9100 || inst.Timeout != 3*time.Second {
		t.Fatalf("unexpected decode %+v", inst)
	}
	if !reg.Has("s") || reg.Has("x") {
		t.Fatalf("Has mismatch")
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
	if got := reg.Names(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected names %v", got)
	}
}
