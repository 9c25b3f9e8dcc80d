package engine

import "testing"

func TestSimulatorTickCounter(t *testing.T) {
	sim := NewSimulator(Normalize(Config{Width: 8, Height: 8, AliveRatio: 0.3}))
	if sim.TickCount() != 0 {
		t.Fatalf("fresh simulator at tick %d", sim.TickCount())
	}
	r := sim.Step()
	if r.Tick != 1 || sim.TickCount() != 1 {
		t.Fatalf("after one step: result tick %d, counter %d", r.Tick, sim.TickCount())
	}
}

func TestSimulatorStepManyClampsAndReturnsAll(t *testing.T) {
	sim := NewSimulator(Normalize(Config{Width: 8, Height: 8, AliveRatio: 0.3}))
	if got := len(sim.StepMany(0)); got != 1 {
		t.Fatalf("StepMany(0) returned %d results, want 1", got)
	}
	results := sim.StepMany(5)
	if len(results) != 5 {
		t.Fatalf("StepMany(5) returned %d results", len(results))
	}
	for i, r := range results {
		if want := uint64(2 + i); r.Tick != want {
			t.Fatalf("result %d at tick %d, want %d", i, r.Tick, want)
		}
	}
}

func TestSimulatorStateIsDefensiveCopy(t *testing.T) {
	sim := NewSimulator(Normalize(Config{Width: 8, Height: 8, AliveRatio: 0.5}))
	snap := sim.State()
	for i := range snap.Types {
		snap.Types[i] = CellGrass
		snap.Energy10[i] = 1
	}
	if sim.Digest() != NewSimulator(sim.Config()).Digest() {
		t.Fatalf("mutating a snapshot changed the simulator state")
	}
}

func TestSimulatorStepManyMatchesSingleSteps(t *testing.T) {
	cfg := Normalize(Config{Width: 16, Height: 16, Seed: 31, AliveRatio: 0.35})
	a := NewSimulator(cfg)
	b := NewSimulator(cfg)

	batched := a.StepMany(20)
	for i := 0; i < 20; i++ {
		r := b.Step()
		if r.Digest != batched[i].Digest {
			t.Fatalf("tick %d: batched digest %s != single-step %s", r.Tick, batched[i].Digest, r.Digest)
		}
	}
}

func TestSimulatorCumulativeCounters(t *testing.T) {
	cfg := Normalize(Config{Width: 16, Height: 16, Seed: 8, AliveRatio: 0.4})
	sim := NewSimulator(cfg)
	var births, deaths uint64
	for i := 0; i < 15; i++ {
		r := sim.Step()
		births += uint64(r.Stats.Births)
		deaths += uint64(r.Stats.Deaths)
		if r.TotalBirths != births || r.TotalDeaths != deaths {
			t.Fatalf("tick %d: cumulative %d/%d, want %d/%d",
				r.Tick, r.TotalBirths, r.TotalDeaths, births, deaths)
		}
	}
}

func TestSimulatorSnapshotInitialFrame(t *testing.T) {
	cfg := Normalize(Config{Width: 11, Height: 11, InitMode: InitSingleBlock})
	sim := NewSimulator(cfg)
	snap := sim.Snapshot()
	if snap.Tick != 0 {
		t.Fatalf("snapshot tick = %d, want 0", snap.Tick)
	}
	if got := snap.Stats.Fire + snap.Stats.Water + snap.Stats.Grass; got != 27 {
		t.Fatalf("initial alive = %d, want 27", got)
	}
	if snap.Digest != sim.Digest() {
		t.Fatalf("snapshot digest mismatch")
	}
}
