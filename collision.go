package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const freeSpotAttempts = 10000

// ErrBadGrid is returned when tile data does not describe a usable grid
var ErrBadGrid = errors.New("invalid tile grid")

// Grid is the tile occupancy map of the current round. It is never
// mutated after construction, so it can be shared without locking.
//
// World coordinates are centered on the grid with y growing upward.
// Screen coordinates start at the top-left corner of tile (0,0) with
// y growing downward, one row of tiles per TileSize.
type Grid struct {
	Width    int
	Height   int
	TileSize float64
	tiles    []byte
}

// RayHit is the first wall crossing found by a ray walk
type RayHit struct {
	X, Y float64 // world coordinates of the crossing
	Dist float64 // distance from the ray origin
}

// Sides reports which neighbouring tiles a circle touches
type Sides struct {
	Left, Right, Up, Down bool
}

// Any reports whether any side is obstructed
func (s Sides) Any() bool {
	return s.Left || s.Right || s.Up || s.Down
}

// NewGrid creates a grid from row-major tile data, non-zero meaning solid
func NewGrid(width, height int, tileSize float64, tiles []byte) (*Grid, error) {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil, fmt.Errorf("%w: %dx%d tiles of size %v", ErrBadGrid, width, height, tileSize)
	}
	if len(tiles) != width*height {
		return nil, fmt.Errorf("%w: have %d tiles, want %d", ErrBadGrid, len(tiles), width*height)
	}
	t := make([]byte, len(tiles))
	copy(t, tiles)
	return &Grid{Width: width, Height: height, TileSize: tileSize, tiles: t}, nil
}

func (g *Grid) halfW() float64 { return float64(g.Width) * g.TileSize / 2 }
func (g *Grid) halfH() float64 { return float64(g.Height) * g.TileSize / 2 }

// Diagonal is the default reach of a ray cast
func (g *Grid) Diagonal() float64 {
	return float64(g.Width+g.Height) * g.TileSize
}

// TileBlocked reports whether a tile is solid. Tiles outside the grid are solid.
func (g *Grid) TileBlocked(tx, ty int) bool {
	if tx < 0 || ty < 0 || tx >= g.Width || ty >= g.Height {
		return true
	}
	return g.tiles[ty*g.Width+tx] != 0
}

// ceilIndex maps a coordinate in tile units to a tile index, -1 when it is
// outside (0, n]
func ceilIndex(v float64, n int) int {
	if !(v > 0 && v <= float64(n)) {
		return -1
	}
	return int(math.Ceil(v)) - 1
}

// IsBlocked reports whether the world point lies in a solid tile or outside the grid
func (g *Grid) IsBlocked(x, y float64) bool {
	tx := ceilIndex((x+g.halfW())/g.TileSize, g.Width)
	ty := ceilIndex((-y+g.halfH())/g.TileSize, g.Height)
	return g.TileBlocked(tx, ty)
}

// TileCenter returns the world coordinates of the center of a tile
func (g *Grid) TileCenter(tx, ty int) (float64, float64) {
	x := float64(tx)*g.TileSize - g.halfW() + g.TileSize/2
	y := -(float64(ty)*g.TileSize - g.halfH() + g.TileSize/2)
	return x, y
}

// TileCorner returns the world coordinates of the top-left corner of a tile
func (g *Grid) TileCorner(tx, ty int) (float64, float64) {
	return float64(tx)*g.TileSize - g.halfW(), g.halfH() - float64(ty)*g.TileSize
}

// FindFreeSpot picks random tiles until one is open and returns its center.
// ok is false when every attempt hit a wall.
func (g *Grid) FindFreeSpot(rng *rand.Rand) (x, y float64, ok bool) {
	for i := 0; i < freeSpotAttempts; i++ {
		tx := rng.Intn(g.Width)
		ty := rng.Intn(g.Height)
		if !g.TileBlocked(tx, ty) {
			x, y = g.TileCenter(tx, ty)
			return x, y, true
		}
	}
	return 0, 0, false
}

// CastRay walks from (x, y) along angle (degrees) for maxDist units and
// returns the first wall crossing. maxDist <= 0 means the grid diagonal.
func (g *Grid) CastRay(x, y, angle, maxDist float64) (RayHit, bool) {
	if maxDist <= 0 {
		maxDist = g.Diagonal()
	}
	a := -angle * degToRad
	sx, sy := x+g.halfW(), -y+g.halfH()
	return g.walk(x, y, sx, sy, sx+math.Cos(a)*maxDist, sy+math.Sin(a)*maxDist)
}

// SegmentBlocked returns the first wall crossing between two world points
func (g *Grid) SegmentBlocked(x1, y1, x2, y2 float64) (RayHit, bool) {
	return g.walk(x1, y1, x1+g.halfW(), -y1+g.halfH(), x2+g.halfW(), -y2+g.halfH())
}

func (g *Grid) walk(ox, oy, sx1, sy1, sx2, sy2 float64) (RayHit, bool) {
	ts := g.TileSize
	hx, hy, ok := g.rayCast(sx1/ts, sy1/ts, sx2/ts, sy2/ts)
	if !ok {
		return RayHit{}, false
	}
	wx := hx*ts - g.halfW()
	wy := g.halfH() - hy*ts
	return RayHit{X: wx, Y: wy, Dist: Distance(ox, oy, wx, wy)}, true
}

func finiteTiles(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.Abs(v) > 1e6 {
			return false
		}
	}
	return true
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// rayCast is a DDA walk between two points given in tile units of screen
// space. It returns the crossing into the first solid tile, also in tile units.
func (g *Grid) rayCast(x1, y1, x2, y2 float64) (float64, float64, bool) {
	if !finiteTiles(x1, y1, x2, y2) {
		return 0, 0, false
	}
	tx, ty := int(math.Trunc(x1)), int(math.Trunc(y1))
	endX, endY := int(math.Trunc(x2)), int(math.Trunc(y2))
	if tx == endX && ty == endY {
		return 0, 0, false
	}

	dirX, dirY := x2-x1, y2-y1
	stepX, stepY := sign(dirX), sign(dirY)

	// Parametric distances are scaled by |dirX*dirY| to avoid dividing by
	// a zero component.
	deltaX := math.Abs(dirY)
	deltaY := math.Abs(dirX)
	maxX, maxY := math.Inf(1), math.Inf(1)
	fracX := x1 - math.Trunc(x1)
	fracY := y1 - math.Trunc(y1)
	switch {
	case stepX > 0:
		maxX = deltaX * (1 - fracX)
	case stepX < 0:
		maxX = deltaX * fracX
	}
	switch {
	case stepY > 0:
		maxY = deltaY * (1 - fracY)
	case stepY < 0:
		maxY = deltaY * fracY
	}

	limit := absInt(endX-tx) + absInt(endY-ty) + 1
	for i := 0; i < limit && (tx != endX || ty != endY); i++ {
		if maxX < maxY {
			maxX += deltaX
			tx += stepX
			if g.TileBlocked(tx, ty) {
				cx := float64(tx)
				if stepX < 0 {
					cx++
				}
				return cx, y1 + dirY/dirX*(cx-x1), true
			}
		} else {
			maxY += deltaY
			ty += stepY
			if g.TileBlocked(tx, ty) {
				cy := float64(ty)
				if stepY < 0 {
					cy++
				}
				return x1 + dirX/dirY*(cy-y1), cy, true
			}
		}
	}
	return 0, 0, false
}

// CircleVsGrid tests a circle against the 3x3 block of tiles around its
// center. A diagonal neighbour marks both of its sides, the center tile
// marks all four.
func (g *Grid) CircleVsGrid(x, y, r float64) Sides {
	sx, sy := x+g.halfW(), -y+g.halfH()
	if !finiteTiles(sx/g.TileSize, sy/g.TileSize) {
		return Sides{true, true, true, true}
	}
	tx := int(math.Floor(sx / g.TileSize))
	ty := int(math.Floor(sy / g.TileSize))

	var s Sides
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if !g.circleHitsTile(sx, sy, r, tx+dx, ty+dy) {
				continue
			}
			if dx == 0 && dy == 0 {
				return Sides{true, true, true, true}
			}
			s.Left = s.Left || dx < 0
			s.Right = s.Right || dx > 0
			s.Up = s.Up || dy < 0
			s.Down = s.Down || dy > 0
		}
	}
	return s
}

func (g *Grid) circleHitsTile(sx, sy, r float64, tx, ty int) bool {
	if !g.TileBlocked(tx, ty) {
		return false
	}
	half := g.TileSize / 2
	cdx := math.Abs(sx - float64(tx)*g.TileSize - half)
	cdy := math.Abs(sy - float64(ty)*g.TileSize - half)
	if cdx > half+r || cdy > half+r {
		return false
	}
	return cdx <= half || cdy <= half
}
