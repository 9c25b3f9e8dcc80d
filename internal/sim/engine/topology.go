package engine

// Topology is the per-config neighbor cache: for every cell, the indices of
// its 8 Moore neighbors in a fixed NW,N,NE,W,E,SW,S,SE order. It lives for
// exactly one config and is rebuilt whenever width, height or wrap change.
type Topology struct {
	Width  int
	Height int
	Wrap   bool

	// Neighbors is flat, 8 entries per cell.
	Neighbors []int32
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// BuildNeighbors precomputes the neighbor table for cfg. With WrapWorld the
// grid is toroidal. Without it, an out-of-bounds neighbor folds back to the
// cell's own index; the cell counts as its own neighbor in that direction.
// Digest parity with other backends depends on this exact edge behavior, so
// it must not be "fixed" to exclude edge neighbors.
func BuildNeighbors(cfg Config) *Topology {
	w, h := cfg.Width, cfg.Height
	t := &Topology{
		Width:     w,
		Height:    h,
		Wrap:      cfg.WrapWorld,
		Neighbors: make([]int32, 8*w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			base := idx * 8
			for k, off := range neighborOffsets {
				nx, ny := x+off[0], y+off[1]
				if cfg.WrapWorld {
					nx = (nx%w + w) % w
					ny = (ny%h + h) % h
				} else if nx < 0 || nx >= w || ny < 0 || ny >= h {
					nx, ny = x, y
				}
				t.Neighbors[base+k] = int32(ny*w + nx)
			}
		}
	}
	return t
}
