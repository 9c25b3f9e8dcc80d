package engine

import "triocell/internal/sim/hash"

// Cell types. 0 is empty; the three materials beat each other in a cycle:
// water beats fire, fire beats grass, grass beats water.
const (
	CellEmpty uint8 = 0
	CellFire  uint8 = 1
	CellWater uint8 = 2
	CellGrass uint8 = 3
)

// State is the structure-of-arrays cell grid. All three slices have length
// Width*Height. Invariant: types[i]==0 implies energy10[i]==0 and age[i]==0.
type State struct {
	Width  int
	Height int

	Types    []uint8
	Energy10 []int32
	Age      []int32
}

// NewState allocates an all-empty grid.
func NewState(width, height int) *State {
	size := width * height
	return &State{
		Width:    width,
		Height:   height,
		Types:    make([]uint8, size),
		Energy10: make([]int32, size),
		Age:      make([]int32, size),
	}
}

// Size returns the cell count.
func (s *State) Size() int { return s.Width * s.Height }

// Clone returns a deep copy. Callers may mutate or retain the copy freely.
func (s *State) Clone() *State {
	c := NewState(s.Width, s.Height)
	copy(c.Types, s.Types)
	copy(c.Energy10, s.Energy10)
	copy(c.Age, s.Age)
	return c
}

func digestState(s *State) string {
	return hash.Digest(s.Types, s.Energy10, s.Age)
}

// beats reports whether material a wins against material b under the fixed
// cycle. Empty never beats and is never beaten.
func beats(a, b uint8) bool {
	switch a {
	case CellWater:
		return b == CellFire
	case CellFire:
		return b == CellGrass
	case CellGrass:
		return b == CellWater
	default:
		return false
	}
}
