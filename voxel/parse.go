package voxel

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCoordinate reads "x,y,z" or "x,z" (y = 0). Components may be separated by commas or
// spaces and may carry a fractional part, which is truncated the way the game prints
// player positions.
func ParseCoordinate(s string) (Coordinate, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Coordinate{}, fmt.Errorf("voxel: bad coordinate %q: %w", s, err)
		}
		vals[i] = int(v)
	}

	switch len(vals) {
	case 3:
		return Coordinate{X: vals[0], Y: vals[1], Z: vals[2]}, nil
	case 2:
		return Coordinate{X: vals[0], Z: vals[1]}, nil
	}
	return Coordinate{}, fmt.Errorf("voxel: bad coordinate %q: want x,z or x,y,z", s)
}

// RegionFileName returns the file name of region (x, z).
func RegionFileName(x, z int) string {
	return fmt.Sprintf("r.%d.%d.mca", x, z)
}

// ParseRegionFileName is the inverse of RegionFileName. It also accepts the other per-region
// files that share the naming scheme, such as "r.0.-1.hdt".
func ParseRegionFileName(name string) (x, z int, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 4 || parts[0] != "r" {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(parts[1])
	z, errZ := strconv.Atoi(parts[2])
	if errX != nil || errZ != nil {
		return 0, 0, false
	}
	return x, z, true
}
