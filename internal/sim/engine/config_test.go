package engine

import "testing"

func TestNormalizeFillsDefaults(t *testing.T) {
	c := Normalize(Config{})
	if c.Width != 64 || c.Height != 64 {
		t.Fatalf("default grid = %dx%d, want 64x64", c.Width, c.Height)
	}
	if c.Seed != 1 {
		t.Fatalf("default seed = %d, want 1", c.Seed)
	}
	if c.InitMode != InitRandom {
		t.Fatalf("default init mode = %q", c.InitMode)
	}
	if c.Consts.MaxEnergy10 != 100 {
		t.Fatalf("default max energy = %d", c.Consts.MaxEnergy10)
	}
}

func TestNormalizeClampsRanges(t *testing.T) {
	c := Normalize(Config{
		Width:          10,
		Height:         10,
		TickRateUI:     99,
		ChunkTicks:     99,
		AliveRatio:     1.7,
		ReproThreshold: 12,
	})
	if c.TickRateUI != 5 {
		t.Errorf("tick rate = %d, want 5", c.TickRateUI)
	}
	if c.ChunkTicks != 16 {
		t.Errorf("chunk ticks = %d, want 16", c.ChunkTicks)
	}
	if c.AliveRatio != 1 {
		t.Errorf("alive ratio = %v, want 1", c.AliveRatio)
	}
	if c.ReproThreshold != 8 {
		t.Errorf("repro threshold = %d, want 8", c.ReproThreshold)
	}
}

func TestNormalizeClampsEnergiesIntoMax(t *testing.T) {
	c := Normalize(Config{
		Width: 4, Height: 4,
		Consts: Constants{
			MaxEnergy10:   40,
			StartEnergy10: 90,
			SpawnEnergy10: -5,
		},
	})
	if c.Consts.StartEnergy10 != 40 {
		t.Errorf("start energy = %d, want clamp to 40", c.Consts.StartEnergy10)
	}
	if c.Consts.SpawnEnergy10 != 0 {
		t.Errorf("spawn energy = %d, want clamp to 0", c.Consts.SpawnEnergy10)
	}
}

func TestNormalizeForcesAgingDrain(t *testing.T) {
	for _, in := range []int32{0, 1, 5, -3} {
		c := Normalize(Config{Width: 4, Height: 4, Consts: Constants{AgingDrain10: in}})
		if c.Consts.AgingDrain10 != 1 {
			t.Fatalf("aging drain %d normalized to %d, want 1", in, c.Consts.AgingDrain10)
		}
	}
}

func TestNormalizeRejectsUnknownInitMode(t *testing.T) {
	c := Normalize(Config{Width: 4, Height: 4, InitMode: "spiral"})
	if c.InitMode != InitRandom {
		t.Fatalf("unknown init mode normalized to %q, want %q", c.InitMode, InitRandom)
	}
}
