package engine

import (
	"math"

	"triocell/internal/sim/hash"
)

// saltBirthTie keys the deterministic pick among tied birth candidates.
const saltBirthTie = 17

// TickStats carries the per-tick aggregates of one transition. Births and
// Deaths count only this tick; the Simulator accumulates them across a run.
type TickStats struct {
	Empty int
	Fire  int
	Water int
	Grass int

	Births int
	Deaths int

	// MeanEnergy10 is the mean energy over alive cells, rounded to the
	// nearest integer tenth. MeanAge is rounded to two decimals. Both are 0
	// when nothing is alive. They are reporting-only and never digested.
	MeanEnergy10 int
	MeanAge      float64
}

// Tick is the pure state transition: current state in, next state out, plus
// stats and the digest of the resulting state. Each cell's output depends
// only on current-state neighbor reads, so evaluation order is irrelevant
// and the whole pass stays integer-only.
func Tick(s *State, cfg Config, topo *Topology, tickNo uint64) (*State, TickStats, string) {
	next := NewState(s.Width, s.Height)
	var stats TickStats

	maxE := cfg.Consts.MaxEnergy10
	for idx := 0; idx < s.Size(); idx++ {
		base := idx * 8
		t := s.Types[idx]
		if t == CellEmpty {
			var counts [4]int
			for k := 0; k < 8; k++ {
				counts[s.Types[topo.Neighbors[base+k]]]++
			}
			best := 0
			for ct := 1; ct <= 3; ct++ {
				if counts[ct] >= cfg.ReproThreshold && counts[ct] > best {
					best = counts[ct]
				}
			}
			if best == 0 {
				continue
			}
			var leaders [3]uint8
			nl := 0
			for ct := 1; ct <= 3; ct++ {
				if counts[ct] == best {
					leaders[nl] = uint8(ct)
					nl++
				}
			}
			born := leaders[0]
			if nl > 1 {
				born = leaders[hash.Choice(cfg.Seed, int(tickNo), idx, saltBirthTie, nl)]
			}
			next.Types[idx] = born
			next.Energy10[idx] = clampI32(cfg.Consts.SpawnEnergy10, 0, maxE)
			stats.Births++
			continue
		}

		var allies, threats, prey int32
		for k := 0; k < 8; k++ {
			nt := s.Types[topo.Neighbors[base+k]]
			switch {
			case nt == CellEmpty:
			case nt == t:
				allies++
			case beats(nt, t):
				threats++
			case beats(t, nt):
				prey++
			}
		}
		// The trailing -1 is the aging drain; it is fixed by the system and
		// deliberately independent of cfg.Consts.AgingDrain10.
		delta := -threats*cfg.Consts.ThreatPenalty10 +
			allies*cfg.Consts.AllyBonus10 +
			prey*cfg.Consts.PreyBonus10 - 1
		e := s.Energy10[idx] + delta
		if e > maxE {
			e = maxE
		}
		if e <= 0 {
			stats.Deaths++
			continue
		}
		next.Types[idx] = t
		next.Energy10[idx] = e
		next.Age[idx] = s.Age[idx] + 1
	}

	var energySum, ageSum int64
	for idx := 0; idx < next.Size(); idx++ {
		switch next.Types[idx] {
		case CellEmpty:
			stats.Empty++
			continue
		case CellFire:
			stats.Fire++
		case CellWater:
			stats.Water++
		case CellGrass:
			stats.Grass++
		}
		energySum += int64(next.Energy10[idx])
		ageSum += int64(next.Age[idx])
	}
	if alive := stats.Fire + stats.Water + stats.Grass; alive > 0 {
		stats.MeanEnergy10 = int((energySum + int64(alive)/2) / int64(alive))
		stats.MeanAge = math.Round(float64(ageSum)/float64(alive)*100) / 100
	}

	return next, stats, hash.Digest(next.Types, next.Energy10, next.Age)
}

// StatsOf computes the reporting aggregates of a state without advancing it.
// Used for the initial frame of a run.
func StatsOf(s *State) TickStats {
	var stats TickStats
	var energySum, ageSum int64
	for idx := 0; idx < s.Size(); idx++ {
		switch s.Types[idx] {
		case CellEmpty:
			stats.Empty++
			continue
		case CellFire:
			stats.Fire++
		case CellWater:
			stats.Water++
		case CellGrass:
			stats.Grass++
		}
		energySum += int64(s.Energy10[idx])
		ageSum += int64(s.Age[idx])
	}
	if alive := stats.Fire + stats.Water + stats.Grass; alive > 0 {
		stats.MeanEnergy10 = int((energySum + int64(alive)/2) / int64(alive))
		stats.MeanAge = math.Round(float64(ageSum)/float64(alive)*100) / 100
	}
	return stats
}
