package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"triocell/internal/sim/engine"
)

func TestDefaultsMatchEngineDefaults(t *testing.T) {
	cfg := Defaults().EngineConfig()
	if cfg != engine.Normalize(engine.DefaultConfig()) {
		t.Fatalf("stock tuning diverges from engine defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	body := `
protocol_version: "1.0"
drop_ttl_seconds: 15
defaults:
  width: 48
  height: 32
  wrap_world: true
  tick_rate_ui: 2
  chunk_ticks: 8
  seed: 77
  init_mode: triad
  alive_ratio: 0.15
  repro_threshold: 4
  constants:
    max_energy10: 120
    start_energy10: 60
    spawn_energy10: 25
    threat_penalty10: 5
    ally_bonus10: 1
    prey_bonus10: 3
    aging_drain10: 1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.DropTTLSeconds != 15 {
		t.Fatalf("drop ttl = %d", tn.DropTTLSeconds)
	}
	cfg := tn.EngineConfig()
	if cfg.Width != 48 || cfg.Height != 32 || cfg.InitMode != engine.InitTriad {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Consts.MaxEnergy10 != 120 || cfg.Consts.StartEnergy10 != 60 {
		t.Fatalf("constants = %+v", cfg.Consts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("defaults: [..."), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected yaml error")
	}
}
