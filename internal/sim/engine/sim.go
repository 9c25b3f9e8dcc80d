package engine

// Result is what one applied tick yields: the tick number just reached, the
// resulting state (a private copy for the caller), run-cumulative metrics
// and the state digest.
type Result struct {
	Tick   uint64
	State  *State
	Stats  TickStats
	Digest string

	// Cumulative counters over the whole run, maintained by the Simulator.
	TotalBirths uint64
	TotalDeaths uint64
}

// Simulator owns one run: current state, a monotonically increasing tick
// counter starting at 0, and the topology cache for its fixed config.
type Simulator struct {
	cfg   Config
	topo  *Topology
	state *State
	tick  uint64

	births uint64
	deaths uint64
}

// NewSimulator builds a simulator from an already-normalized config. The
// same config always starts from the same initial state.
func NewSimulator(cfg Config) *Simulator {
	return &Simulator{
		cfg:   cfg,
		topo:  BuildNeighbors(cfg),
		state: NewInitialState(cfg),
	}
}

// Config returns the run's immutable parameters.
func (s *Simulator) Config() Config { return s.cfg }

// TickCount returns the number of ticks applied so far.
func (s *Simulator) TickCount() uint64 { return s.tick }

// State returns a defensive copy of the current grid.
func (s *Simulator) State() *State { return s.state.Clone() }

// Snapshot returns the current tick's Result without advancing. At tick 0
// this is the initial frame of the run.
func (s *Simulator) Snapshot() Result {
	return Result{
		Tick:        s.tick,
		State:       s.state.Clone(),
		Stats:       StatsOf(s.state),
		Digest:      s.Digest(),
		TotalBirths: s.births,
		TotalDeaths: s.deaths,
	}
}

// Digest fingerprints the current state.
func (s *Simulator) Digest() string {
	return digestState(s.state)
}

// Step applies the transition once and returns the full result.
func (s *Simulator) Step() Result {
	next, stats, digest := Tick(s.state, s.cfg, s.topo, s.tick)
	s.state = next
	s.tick++
	s.births += uint64(stats.Births)
	s.deaths += uint64(stats.Deaths)
	return Result{
		Tick:        s.tick,
		State:       next.Clone(),
		Stats:       stats,
		Digest:      digest,
		TotalBirths: s.births,
		TotalDeaths: s.deaths,
	}
}

// StepMany applies Step n times (n clamped to [1,1_000_000]) and returns
// every intermediate result in order. Ticks are never skipped or batched.
func (s *Simulator) StepMany(n int) []Result {
	if n < 1 {
		n = 1
	}
	if n > 1_000_000 {
		n = 1_000_000
	}
	out := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.Step())
	}
	return out
}
