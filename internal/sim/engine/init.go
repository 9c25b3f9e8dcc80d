package engine

import (
	"math"
	"sort"

	"triocell/internal/sim/hash"
)

// Hash salts for the placement paths. These are part of the determinism
// contract and must match any alternate backend.
const (
	saltInitType    = 1
	saltInitRoll    = 2
	saltBlockType   = 3
	saltBlockBias   = 4
	saltTriadJitter = 5
	saltBlockRotate = 7
	saltTriadTie    = 11
	saltBlockScan   = 13
	saltFallback    = 19
)

// NewInitialState builds the initial grid for cfg. Identical configs always
// produce byte-identical arrays.
func NewInitialState(cfg Config) *State {
	s := NewState(cfg.Width, cfg.Height)
	switch cfg.InitMode {
	case InitClustered:
		initClustered(s, cfg)
	case InitTriad:
		initTriad(s, cfg)
	case InitSingleBlock:
		initSingleBlock(s, cfg)
	default:
		initRandom(s, cfg)
	}
	return s
}

func ratioPer10k(r float64) int {
	v := int(math.Round(r * 10000))
	if v < 0 {
		v = 0
	}
	if v > 10000 {
		v = 10000
	}
	return v
}

func place(s *State, idx int, t uint8, cfg Config) {
	s.Types[idx] = t
	s.Energy10[idx] = cfg.Consts.StartEnergy10
	s.Age[idx] = 0
}

// initRandom rolls every cell independently: a hashed candidate type plus a
// hashed alive roll in [0,10000).
func initRandom(s *State, cfg Config) {
	ratio10k := ratioPer10k(cfg.AliveRatio)
	for idx := 0; idx < s.Size(); idx++ {
		roll := hash.U24Mod(cfg.Seed, idx, 0, saltInitRoll, 10000)
		if roll >= ratio10k {
			continue
		}
		t := uint8(1 + hash.U24Mod(cfg.Seed, idx, 0, saltInitType, 3))
		place(s, idx, t, cfg)
	}
}

// initClustered partitions the grid into 8x8 blocks. Each block picks one
// dominant type and an alive bias in [6000,14000]/10000 that scales the base
// ratio before the same roll test as initRandom.
func initClustered(s *State, cfg Config) {
	ratio10k := ratioPer10k(cfg.AliveRatio)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			idx := y*s.Width + x
			bx, by := x/8, y/8
			dominant := uint8(1 + hash.U24Mod(cfg.Seed, bx, by, saltBlockType, 3))
			bias := 6000 + hash.U24Mod(cfg.Seed, bx, by, saltBlockBias, 8001)
			eff := ratio10k * bias / 10000
			if eff > 10000 {
				eff = 10000
			}
			roll := hash.U24Mod(cfg.Seed, idx, 0, saltInitRoll, 10000)
			if roll < eff {
				place(s, idx, dominant, cfg)
			}
		}
	}
}

// triadCenters are the fixed fractional coordinates (percent of grid) for
// the three clusters, in type order fire, water, grass.
var triadCenters = [3][2]int{{22, 24}, {78, 24}, {50, 76}}

// initTriad places one compact cluster per type: a seeded base center plus
// bounded jitter, then the closest cells claimed by squared distance with a
// hashed tie-break. The alive budget splits three ways with the remainder
// going to the earliest types.
func initTriad(s *State, cfg Config) {
	size := s.Size()
	total := ratioPer10k(cfg.AliveRatio) * size / 10000
	if total > size {
		total = size
	}

	jr := min(s.Width, s.Height) / 16
	if jr < 1 {
		jr = 1
	}

	taken := make([]bool, size)
	for ti := 0; ti < 3; ti++ {
		t := uint8(ti + 1)
		want := total / 3
		if ti < total%3 {
			want++
		}
		if want == 0 {
			continue
		}

		cx := s.Width * triadCenters[ti][0] / 100
		cy := s.Height * triadCenters[ti][1] / 100
		cx += hash.U24Mod(cfg.Seed, ti, 0, saltTriadJitter, 2*jr+1) - jr
		cy += hash.U24Mod(cfg.Seed, ti, 1, saltTriadJitter, 2*jr+1) - jr
		cx = clampInt(cx, 0, s.Width-1)
		cy = clampInt(cy, 0, s.Height-1)

		cand := make([]int, 0, size)
		for idx := 0; idx < size; idx++ {
			if !taken[idx] {
				cand = append(cand, idx)
			}
		}
		dist := func(idx int) int {
			dx := idx%s.Width - cx
			dy := idx/s.Width - cy
			return dx*dx + dy*dy
		}
		sort.Slice(cand, func(i, j int) bool {
			di, dj := dist(cand[i]), dist(cand[j])
			if di != dj {
				return di < dj
			}
			hi := hash.Hash24(cfg.Seed, cand[i], ti, saltTriadTie)
			hj := hash.Hash24(cfg.Seed, cand[j], ti, saltTriadTie)
			if hi != hj {
				return hi < hj
			}
			return cand[i] < cand[j]
		})
		if want > len(cand) {
			want = len(cand)
		}
		for _, idx := range cand[:want] {
			taken[idx] = true
			place(s, idx, t, cfg)
		}
	}
}

// initSingleBlock places three non-overlapping 3x3 blocks, one per type,
// rotating the type-to-block assignment by seed. Placement retries with
// progressively smaller minimum center separation; a fallback guarantees at
// least one cell per type on grids too small for full blocks.
func initSingleBlock(s *State, cfg Config) {
	r := hash.U24Mod(cfg.Seed, 0, 0, saltBlockRotate, 3)
	var order [3]uint8
	for i := 0; i < 3; i++ {
		order[i] = uint8(1 + (r+i)%3)
	}

	var placed []blockCenter

	if s.Width >= 3 && s.Height >= 3 {
		for sep := min(s.Width, s.Height) / 2; sep >= 0; sep-- {
			placed = placed[:0]
			ok := true
			for bi := 0; bi < 3; bi++ {
				c, found := findBlockCenter(s, cfg, bi, sep, placed)
				if !found {
					ok = false
					break
				}
				placed = append(placed, c)
			}
			if ok {
				break
			}
		}
	}

	var present [4]bool
	for bi, b := range placed {
		t := order[bi]
		present[t] = true
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				place(s, (b.cy+dy)*s.Width+b.cx+dx, t, cfg)
			}
		}
	}

	// Degenerate grids: make sure every type exists somewhere.
	for ti := 1; ti <= 3; ti++ {
		if present[ti] {
			continue
		}
		size := s.Size()
		start := hash.U24Mod(cfg.Seed, ti, 0, saltFallback, size)
		for k := 0; k < size; k++ {
			idx := (start + k) % size
			if s.Types[idx] == CellEmpty {
				place(s, idx, uint8(ti), cfg)
				break
			}
		}
	}
}

type blockCenter struct{ cx, cy int }

// findBlockCenter scans candidate 3x3 centers in a seeded circular order and
// returns the first one whose block does not overlap any placed block and
// whose center keeps Chebyshev distance >= sep from every placed center.
func findBlockCenter(s *State, cfg Config, bi, sep int, placed []blockCenter) (blockCenter, bool) {
	cw, ch := s.Width-2, s.Height-2
	n := cw * ch
	start := hash.U24Mod(cfg.Seed, bi, sep, saltBlockScan, n)
	for k := 0; k < n; k++ {
		ci := (start + k) % n
		cx := 1 + ci%cw
		cy := 1 + ci/cw
		ok := true
		for _, p := range placed {
			d := chebyshev(cx-p.cx, cy-p.cy)
			if d <= 2 || d < sep {
				ok = false
				break
			}
		}
		if ok {
			return blockCenter{cx, cy}, true
		}
	}
	return blockCenter{}, false
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
