package anvil

import (
	"fmt"

	"github.com/astei/anvilview/nbt"
)

const (
	// SectionBlocks is the number of blocks in a 16x16x16 section.
	SectionBlocks = 16 * 16 * 16
	nibbleBytes   = SectionBlocks / 2
)

// Section is a view over one 16-high slice of a chunk. Block positions are
// y*256 + z*16 + x with every component in 0..15.
//
// The arrays alias the chunk's tree, so updates are visible through the tree. Getters are safe
// on a nil *Section and report no data.
type Section struct {
	tag        *nbt.Tag
	blocks     []byte
	add        []byte
	data       []byte
	skyLight   []byte
	blockLight []byte
}

func newSection(t *nbt.Tag) *Section {
	c := t.Compound()
	s := &Section{tag: t}
	s.blocks, _ = c.Get("Blocks").Bytes()
	s.add, _ = c.Get("Add").Bytes()
	s.data, _ = c.Get("Data").Bytes()
	s.skyLight, _ = c.Get("SkyLight").Bytes()
	s.blockLight, _ = c.Get("BlockLight").Bytes()
	return s
}

// Y is the section's index within its chunk, or -1 for a nil section.
func (s *Section) Y() int {
	if s == nil {
		return -1
	}
	y, _ := s.tag.Compound().Get("Y").Int()
	return int(y)
}

// Tag returns the section compound.
func (s *Section) Tag() *nbt.Tag {
	if s == nil {
		return nil
	}
	return s.tag
}

// BlockID returns the 12-bit block id at pos: the Blocks byte plus the Add nibble shifted
// left by 8. A section without Blocks reads as air.
func (s *Section) BlockID(pos int) int {
	if s == nil || pos < 0 || pos >= len(s.blocks) {
		return 0
	}
	id := int(s.blocks[pos])
	if hi := nibble(s.add, pos); hi > 0 {
		id |= hi << 8
	}
	return id
}

// BlockData returns the data nibble at pos, or -1 if the section has no Data array.
func (s *Section) BlockData(pos int) int {
	if s == nil {
		return -1
	}
	return nibble(s.data, pos)
}

// SkyLight returns the sky light nibble at pos, or -1 if the section has no SkyLight array.
func (s *Section) SkyLight(pos int) int {
	if s == nil {
		return -1
	}
	return nibble(s.skyLight, pos)
}

// BlockLight returns the block light nibble at pos, or -1 if the section has no BlockLight
// array.
func (s *Section) BlockLight(pos int) int {
	if s == nil {
		return -1
	}
	return nibble(s.blockLight, pos)
}

// UpdateBlockID stores id at pos. The low byte goes to Blocks and the high nibble to Add,
// which is created when a nibble above zero first needs it.
func (s *Section) UpdateBlockID(pos, id int) error {
	if s == nil || pos < 0 || pos >= len(s.blocks) {
		return fmt.Errorf("%w: Blocks at %d", ErrNoField, pos)
	}
	s.blocks[pos] = byte(id)

	hi := (id >> 8) & 0xf
	if hi != 0 && pos/2 >= len(s.add) {
		add := make([]byte, nibbleBytes)
		copy(add, s.add)
		s.add = add
		s.tag.Compound().Put(nbt.New("Add", nbt.ByteArray(add)))
	}
	if pos/2 < len(s.add) {
		setNibble(s.add, pos, hi)
	}
	return nil
}

func (s *Section) UpdateBlockData(pos, value int) error {
	return s.update("Data", pos, value)
}

func (s *Section) UpdateSkyLight(pos, value int) error {
	return s.update("SkyLight", pos, value)
}

func (s *Section) UpdateBlockLight(pos, value int) error {
	return s.update("BlockLight", pos, value)
}

func (s *Section) update(name string, pos, value int) error {
	arr := s.nibbles(name)
	if pos < 0 || pos/2 >= len(arr) {
		return fmt.Errorf("%w: %s at %d", ErrNoField, name, pos)
	}
	setNibble(arr, pos, value)
	return nil
}

func (s *Section) nibbles(name string) []byte {
	if s == nil {
		return nil
	}
	switch name {
	case "Data":
		return s.data
	case "SkyLight":
		return s.skyLight
	case "BlockLight":
		return s.blockLight
	}
	return nil
}

// IsEmpty reports whether every block in the section is air.
func (s *Section) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, b := range s.blocks {
		if b != 0 {
			return false
		}
	}
	for _, b := range s.add {
		if b != 0 {
			return false
		}
	}
	return true
}

// nibble returns the 4-bit value at pos: the low half of byte pos/2 for even positions and
// the high half for odd ones. It returns -1 if arr does not cover pos.
func nibble(arr []byte, pos int) int {
	if pos < 0 || pos/2 >= len(arr) {
		return -1
	}
	b := arr[pos/2]
	if pos%2 == 0 {
		return int(b & 0x0f)
	}
	return int(b >> 4)
}

// setNibble stores the low four bits of value at pos, leaving the other half of the byte.
func setNibble(arr []byte, pos, value int) {
	v := byte(value) & 0x0f
	i := pos / 2
	if pos%2 == 0 {
		arr[i] = arr[i]&0xf0 | v
	} else {
		arr[i] = arr[i]&0x0f | v<<4
	}
}
