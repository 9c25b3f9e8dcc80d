package engine

import "testing"

func TestInitRandomRatioBounds(t *testing.T) {
	empty := NewInitialState(Normalize(Config{Width: 16, Height: 16, AliveRatio: 0, InitMode: InitRandom}))
	for idx, ct := range empty.Types {
		if ct != CellEmpty {
			t.Fatalf("ratio 0 produced alive cell at %d", idx)
		}
	}

	full := NewInitialState(Normalize(Config{Width: 16, Height: 16, AliveRatio: 1, InitMode: InitRandom}))
	for idx, ct := range full.Types {
		if ct == CellEmpty {
			t.Fatalf("ratio 1 left cell %d empty", idx)
		}
		if ct > CellGrass {
			t.Fatalf("invalid type %d at %d", ct, idx)
		}
	}
}

func TestInitDeterministicPerMode(t *testing.T) {
	for _, mode := range []InitMode{InitRandom, InitClustered, InitTriad, InitSingleBlock} {
		cfg := Normalize(Config{Width: 24, Height: 24, Seed: 123, AliveRatio: 0.3, InitMode: mode})
		a := NewInitialState(cfg)
		b := NewInitialState(cfg)
		if digestState(a) != digestState(b) {
			t.Fatalf("mode %s: identical configs produced different layouts", mode)
		}
	}
}

func TestInitSeedsDiffer(t *testing.T) {
	for _, mode := range []InitMode{InitRandom, InitClustered, InitTriad} {
		a := NewInitialState(Normalize(Config{Width: 24, Height: 24, Seed: 1, AliveRatio: 0.3, InitMode: mode}))
		b := NewInitialState(Normalize(Config{Width: 24, Height: 24, Seed: 99, AliveRatio: 0.3, InitMode: mode}))
		if digestState(a) == digestState(b) {
			t.Fatalf("mode %s: different seeds produced identical layouts", mode)
		}
	}
}

func TestInitPlacedCellsGetStartEnergy(t *testing.T) {
	cfg := Normalize(Config{Width: 16, Height: 16, AliveRatio: 0.5, InitMode: InitClustered})
	s := NewInitialState(cfg)
	for idx, ct := range s.Types {
		if ct == CellEmpty {
			continue
		}
		if s.Energy10[idx] != cfg.Consts.StartEnergy10 {
			t.Fatalf("cell %d energy = %d, want %d", idx, s.Energy10[idx], cfg.Consts.StartEnergy10)
		}
		if s.Age[idx] != 0 {
			t.Fatalf("cell %d age = %d, want 0", idx, s.Age[idx])
		}
	}
}

func TestInitSingleBlockLayout(t *testing.T) {
	cfg := Normalize(Config{Width: 11, Height: 11, InitMode: InitSingleBlock})
	s := NewInitialState(cfg)

	var counts [4]int
	bounds := map[uint8][4]int{} // minX, minY, maxX, maxY
	for idx, ct := range s.Types {
		if ct == CellEmpty {
			continue
		}
		counts[ct]++
		x, y := idx%11, idx/11
		b, ok := bounds[ct]
		if !ok {
			b = [4]int{x, y, x, y}
		} else {
			if x < b[0] {
				b[0] = x
			}
			if y < b[1] {
				b[1] = y
			}
			if x > b[2] {
				b[2] = x
			}
			if y > b[3] {
				b[3] = y
			}
		}
		bounds[ct] = b
		if s.Energy10[idx] != cfg.Consts.StartEnergy10 || s.Age[idx] != 0 {
			t.Fatalf("cell %d: energy=%d age=%d", idx, s.Energy10[idx], s.Age[idx])
		}
	}

	total := counts[1] + counts[2] + counts[3]
	if total != 27 {
		t.Fatalf("alive cells = %d, want 27", total)
	}
	for ct := uint8(1); ct <= 3; ct++ {
		if counts[ct] != 9 {
			t.Errorf("type %d count = %d, want 9", ct, counts[ct])
		}
		b := bounds[ct]
		if b[2]-b[0] != 2 || b[3]-b[1] != 2 {
			t.Errorf("type %d bounding box %dx%d, want 3x3", ct, b[2]-b[0]+1, b[3]-b[1]+1)
		}
	}
}

func TestInitSingleBlockTinyGridStillHasAllTypes(t *testing.T) {
	s := NewInitialState(Normalize(Config{Width: 2, Height: 2, InitMode: InitSingleBlock}))
	var seen [4]bool
	for _, ct := range s.Types {
		seen[ct] = true
	}
	for ct := 1; ct <= 3; ct++ {
		if !seen[ct] {
			t.Fatalf("type %d missing on degenerate grid", ct)
		}
	}
}

// components8 counts 8-connected components of the given type.
func components8(s *State, want uint8) int {
	seen := make([]bool, s.Size())
	comps := 0
	var stack []int
	for start := 0; start < s.Size(); start++ {
		if seen[start] || s.Types[start] != want {
			continue
		}
		comps++
		stack = append(stack[:0], start)
		seen[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%s.Width, idx/s.Width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= s.Width || ny < 0 || ny >= s.Height {
						continue
					}
					n := ny*s.Width + nx
					if !seen[n] && s.Types[n] == want {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
	}
	return comps
}

func TestInitTriadCompactClusters(t *testing.T) {
	cfg := Normalize(Config{Width: 128, Height: 128, Seed: 7, AliveRatio: 0.05, InitMode: InitTriad})
	s := NewInitialState(cfg)

	alive := 0
	for _, ct := range s.Types {
		if ct != CellEmpty {
			alive++
		}
	}
	if alive == 0 {
		t.Fatal("triad produced no alive cells")
	}
	if empty := s.Size() - alive; empty <= alive {
		t.Fatalf("empty=%d alive=%d, want empty majority", empty, alive)
	}

	for ct := uint8(1); ct <= 3; ct++ {
		if got := components8(s, ct); got != 1 {
			t.Errorf("type %d forms %d components, want 1", ct, got)
		}
	}
}

func TestInitTriadBudgetSplit(t *testing.T) {
	cfg := Normalize(Config{Width: 64, Height: 64, Seed: 3, AliveRatio: 0.1, InitMode: InitTriad})
	s := NewInitialState(cfg)
	var counts [4]int
	for _, ct := range s.Types {
		counts[ct]++
	}
	total := ratioPer10k(cfg.AliveRatio) * s.Size() / 10000
	if got := counts[1] + counts[2] + counts[3]; got != total {
		t.Fatalf("alive = %d, want budget %d", got, total)
	}
	// Remainder goes to the earliest types: counts are non-increasing.
	if counts[1] < counts[2] || counts[2] < counts[3] {
		t.Fatalf("budget split %v not remainder-first", counts[1:])
	}
}

func TestInitClusteredBlocksShareDominantType(t *testing.T) {
	cfg := Normalize(Config{Width: 32, Height: 32, Seed: 21, AliveRatio: 0.6, InitMode: InitClustered})
	s := NewInitialState(cfg)
	for by := 0; by < 4; by++ {
		for bx := 0; bx < 4; bx++ {
			var first uint8
			for y := by * 8; y < by*8+8; y++ {
				for x := bx * 8; x < bx*8+8; x++ {
					ct := s.Types[y*s.Width+x]
					if ct == CellEmpty {
						continue
					}
					if first == 0 {
						first = ct
					} else if ct != first {
						t.Fatalf("block (%d,%d) mixes types %d and %d", bx, by, first, ct)
					}
				}
			}
		}
	}
}
