// Package voxel splits world positions into partitions (regions, chunks, sections) and back.
//
// All math uses floor division, so negative coordinates land in the partition below zero
// rather than being truncated toward it: at size 16, x = -1 is zone -1 offset 15.
package voxel

import "fmt"

// Unbounded marks an axis that is not partitioned. The zone is always 0 and the offset is
// the coordinate itself.
const Unbounded = 0

// Axis selects one of the three components of a Coordinate.
type Axis int

const (
	AxisY Axis = iota
	AxisX
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisY:
		return "y"
	case AxisX:
		return "x"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Coordinate is a block position. Components are ordered y, x, z to match the way sections
// store their blocks.
type Coordinate struct {
	Y, X, Z int
}

// Get returns the component on the given axis.
func (c Coordinate) Get(a Axis) int {
	switch a {
	case AxisY:
		return c.Y
	case AxisX:
		return c.X
	case AxisZ:
		return c.Z
	}
	panic("voxel: invalid axis " + a.String())
}

// With returns a copy of c with the component on the given axis replaced.
func (c Coordinate) With(a Axis, v int) Coordinate {
	switch a {
	case AxisY:
		c.Y = v
	case AxisX:
		c.X = v
	case AxisZ:
		c.Z = v
	default:
		panic("voxel: invalid axis " + a.String())
	}
	return c
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// Size is the partition size on each axis. Every component is either positive or Unbounded.
type Size struct {
	Y, X, Z int
}

// Get returns the size on the given axis.
func (s Size) Get(a Axis) int {
	return Coordinate(s).Get(a)
}

// Zone returns the partition that a falls into for partitions of the given size.
func Zone(size, a int) int {
	if size == Unbounded {
		return 0
	}
	if a < 0 {
		// -(a+1) never overflows, unlike -a for the most negative int.
		return -((-(a + 1))/size + 1)
	}
	return a / size
}

// Offset returns the position of a inside its partition, always in [0, size).
func Offset(size, a int) int {
	if size == Unbounded {
		return a
	}
	// zone*size may wrap for the most negative ints; the difference is still exact
	// because the true result fits in [0, size).
	return a - Zone(size, a)*size
}

// Unsplit is the inverse of Zone and Offset.
func Unsplit(size, zone, offset int) int {
	if size == Unbounded {
		return offset
	}
	return zone*size + offset
}

// Split decomposes every axis of c at once.
func Split(s Size, c Coordinate) (zone, offset Coordinate) {
	zone = Coordinate{Y: Zone(s.Y, c.Y), X: Zone(s.X, c.X), Z: Zone(s.Z, c.Z)}
	offset = Coordinate{Y: Offset(s.Y, c.Y), X: Offset(s.X, c.X), Z: Offset(s.Z, c.Z)}
	return
}
