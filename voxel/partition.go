package voxel

// Partitioned is a Coordinate bound to a partition Size. The zone and offset are kept in step
// with the raw coordinate: changing any one of the three recomputes the others.
//
// The zero value is the origin with every axis Unbounded.
type Partitioned struct {
	coord  Coordinate
	size   Size
	zone   Coordinate
	offset Coordinate
}

// NewPartitioned binds c to the given partition size.
func NewPartitioned(c Coordinate, s Size) Partitioned {
	p := Partitioned{size: s}
	p.SetCoordinate(c)
	return p
}

func (p *Partitioned) Coordinate() Coordinate { return p.coord }
func (p *Partitioned) Size() Size             { return p.size }
func (p *Partitioned) Zone() Coordinate       { return p.zone }
func (p *Partitioned) Offset() Coordinate     { return p.offset }

// SetCoordinate moves to c and recomputes zone and offset on every axis.
func (p *Partitioned) SetCoordinate(c Coordinate) {
	p.coord = c
	p.zone, p.offset = Split(p.size, c)
}

// SetZone moves to the same offset inside another partition.
func (p *Partitioned) SetZone(z Coordinate) {
	for _, a := range axes {
		p.SetZoneAxis(a, z.Get(a))
	}
}

// SetOffset moves inside the current partition.
func (p *Partitioned) SetOffset(o Coordinate) {
	for _, a := range axes {
		p.SetOffsetAxis(a, o.Get(a))
	}
}

// SetZoneAxis changes the zone on one axis, keeping that axis's offset. Other axes are untouched.
func (p *Partitioned) SetZoneAxis(a Axis, zone int) {
	p.setAxis(a, Unsplit(p.size.Get(a), zone, p.offset.Get(a)))
}

// SetOffsetAxis changes the offset on one axis, keeping that axis's zone. An offset outside
// [0, size) carries into the neighbouring zone.
func (p *Partitioned) SetOffsetAxis(a Axis, offset int) {
	p.setAxis(a, Unsplit(p.size.Get(a), p.zone.Get(a), offset))
}

func (p *Partitioned) setAxis(a Axis, v int) {
	s := p.size.Get(a)
	p.coord = p.coord.With(a, v)
	p.zone = p.zone.With(a, Zone(s, v))
	p.offset = p.offset.With(a, Offset(s, v))
}

var axes = [...]Axis{AxisY, AxisX, AxisZ}
