// Package mandelbrot renders escape-time grids of the Mandelbrot set by
// handing rows out to a fixed set of workers. Every row is assigned exactly
// once and collected exactly once.
package mandelbrot

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/pkg/errors"
)

// DefaultMaxIter is the iteration cap used by DefaultFrame.
const DefaultMaxIter = 511

// Escape returns the number of iterations of z = z² + c, starting from
// z = c = x+yi, before |z|² reaches 4, capped at maxIter.
func Escape(x, y float64, maxIter int) int {
	cx, cy := x, y
	it := 0
	for ; it < maxIter && x*x+y*y < 4; it++ {
		x, y = x*x-y*y+cx, 2*x*y+cy
	}
	return it
}

// Frame describes the region of the complex plane to render and the size of
// the grid sampled from it.
type Frame struct {
	Width, Height int
	MinX, MaxX    float64
	MinY, MaxY    float64
	MaxIter       int
}

// DefaultFrame frames the whole set.
func DefaultFrame(width, height int) Frame {
	return Frame{
		Width:   width,
		Height:  height,
		MinX:    -2.1,
		MaxX:    0.7,
		MinY:    -1.25,
		MaxY:    1.25,
		MaxIter: DefaultMaxIter,
	}
}

func (f Frame) validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Errorf("mandelbrot: invalid frame size %dx%d", f.Width, f.Height)
	}
	if f.MaxIter < 0 {
		return errors.Errorf("mandelbrot: negative iteration cap %d", f.MaxIter)
	}
	if !(f.MinX < f.MaxX) || !(f.MinY < f.MaxY) {
		return errors.Errorf("mandelbrot: empty region [%g, %g]x[%g, %g]", f.MinX, f.MaxX, f.MinY, f.MaxY)
	}
	return nil
}

// Row computes the escape values of one row of the grid.
func (f Frame) Row(row int) []int {
	dx := (f.MaxX - f.MinX) / float64(f.Width)
	dy := (f.MaxY - f.MinY) / float64(f.Height)
	y := f.MinY + float64(row)*dy
	values := make([]int, f.Width)
	for i := range values {
		values[i] = Escape(f.MinX+float64(i)*dx, y, f.MaxIter)
	}
	return values
}

// Grid is a rendered frame, one slice of escape values per row.
type Grid struct {
	Frame Frame
	Rows  [][]int
}

// Checksum returns an FNV-1a hash over all values in row order.
func (g Grid) Checksum() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, row := range g.Rows {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}

// Histogram counts values into bins equal-width buckets over [0, MaxIter].
func (g Grid) Histogram(bins int) []int {
	if bins <= 0 {
		bins = 1
	}
	counts := make([]int, bins)
	for _, row := range g.Rows {
		for _, v := range row {
			counts[v*bins/(g.Frame.MaxIter+1)]++
		}
	}
	return counts
}
