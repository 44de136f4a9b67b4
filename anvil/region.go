// Package anvil reads Anvil region files and exposes their chunks and sections as typed views
// over the decoded NBT trees.
package anvil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/willf/bitset"

	"github.com/astei/anvilview/voxel"
)

const (
	// SectorSize is the allocation unit of a region file.
	SectorSize = 4096
	// ChunkSlots is the number of chunks a region file can hold.
	ChunkSlots = voxel.RegionChunks * voxel.RegionChunks

	headerSize = 2 * SectorSize
)

var (
	ErrNoChunk            = errors.New("anvil: chunk not found")
	ErrInvalidChunkLength = errors.New("anvil: invalid chunk length")
	ErrInvalidCompression = errors.New("anvil: invalid compression format")
	ErrCompression        = errors.New("anvil: corrupt compressed payload")
	ErrTruncated          = errors.New("anvil: truncated input")
	ErrNoField            = errors.New("anvil: section has no such array")
	ErrInvalidChunk       = errors.New("anvil: invalid chunk")
)

// location is one entry of the sector table: the offset in sectors in the upper 24 bits and
// the number of sectors in the low 8.
type location uint32

func (l location) offset() int64 { return int64(l>>8) * SectorSize }
func (l location) size() int     { return int(l&0xff) * SectorSize }

// TruncatedError records where loading a region stopped early. The chunks read before Slot
// stay usable.
type TruncatedError struct {
	Name string
	Slot int
	Err  error
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s: stopped at slot %d: %v", e.Name, e.Slot, e.Err)
}

func (e *TruncatedError) Unwrap() error { return e.Err }

// Region holds the chunk table and the raw payloads of one region file. A Region is bound to
// a directory and keeps exactly one region loaded at a time; loading another one replaces it.
// It is not safe for concurrent use.
type Region struct {
	dir    string
	x, z   int
	loaded bool

	locations  [ChunkSlots]location
	timestamps [ChunkSlots]uint32
	payloads   [ChunkSlots]*ChunkPayload
	present    *bitset.BitSet
	corrupt    map[int]error
	truncated  *TruncatedError
}

// NewRegion returns an empty Region reading from dir.
func NewRegion(dir string) *Region {
	return &Region{dir: dir, present: bitset.New(ChunkSlots)}
}

// OpenRegion loads the region file for region (x, z) from dir. A missing file is not an
// error; the result reports IsLoaded false.
func OpenRegion(dir string, x, z int) (*Region, error) {
	r := NewRegion(dir)
	if err := r.Load(x, z); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadRegion loads a region from src. The coordinates are only used for naming.
func ReadRegion(src io.ReadSeeker, x, z int) (*Region, error) {
	r := NewRegion("")
	r.x, r.z, r.loaded = x, z, true
	if err := r.read(src); err != nil {
		return nil, err
	}
	return r, nil
}

// Load makes region (x, z) the loaded one. Loading the region that is already loaded does no
// I/O. If the file does not exist the region is empty and IsLoaded reports false.
func (r *Region) Load(x, z int) error {
	if r.loaded && r.x == x && r.z == z {
		return nil
	}
	r.reset()
	r.x, r.z = x, z

	f, err := os.Open(filepath.Join(r.dir, voxel.RegionFileName(x, z)))
	if errors.Is(err, fs.ErrNotExist) {
		r.loaded = true
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err = r.read(f); err != nil {
		r.reset()
		return fmt.Errorf("anvil: reading %s: %w", f.Name(), err)
	}
	r.loaded = true
	return nil
}

func (r *Region) reset() {
	r.loaded = false
	r.locations = [ChunkSlots]location{}
	r.timestamps = [ChunkSlots]uint32{}
	r.payloads = [ChunkSlots]*ChunkPayload{}
	r.present.ClearAll()
	r.corrupt = nil
	r.truncated = nil
}

// read parses the sector table and timestamps, then reads every occupied slot in order. The
// first slot whose payload cannot be read completely ends the loop; everything read before
// it is kept and the stop is recorded for Truncated. A payload whose declared length does not
// fit its sectors only loses that slot.
func (r *Region) read(src io.ReadSeeker) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}

	header := make([]byte, headerSize)
	n, err := io.ReadFull(src, header)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		// Whatever the header is missing reads as empty slots.
		r.truncated = &TruncatedError{Name: r.Name(), Slot: n / 4, Err: fmt.Errorf("%w: header is %d bytes", ErrTruncated, n)}
	case err != nil:
		return err
	}

	headerIn := bytes.NewReader(header)
	if err = binary.Read(headerIn, binary.BigEndian, r.locations[:]); err != nil {
		return err
	}
	if err = binary.Read(headerIn, binary.BigEndian, r.timestamps[:]); err != nil {
		return err
	}
	if r.truncated != nil {
		return nil
	}

	for i, loc := range r.locations {
		if loc.offset() == 0 {
			continue
		}
		p, err := readPayload(src, loc)
		if errors.Is(err, ErrInvalidChunkLength) {
			if r.corrupt == nil {
				r.corrupt = make(map[int]error)
			}
			r.corrupt[i] = err
			continue
		}
		if err != nil {
			r.truncated = &TruncatedError{Name: r.Name(), Slot: i, Err: err}
			break
		}
		r.payloads[i] = p
		r.present.Set(uint(i))
	}
	return nil
}

func readPayload(src io.ReadSeeker, loc location) (*ChunkPayload, error) {
	// An entry with an offset but no sectors is a broken table, not a short file.
	if loc.size() == 0 {
		return nil, fmt.Errorf("%w: no sectors at offset %d", ErrInvalidChunkLength, loc.offset())
	}
	if _, err := src.Seek(loc.offset(), io.SeekStart); err != nil {
		return nil, err
	}
	raw := make([]byte, loc.size())
	n, err := io.ReadFull(src, raw)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	// The last payload of a file may end before its final sector does.
	return parsePayload(raw[:n], len(raw))
}

// Name is the region's file name.
func (r *Region) Name() string { return voxel.RegionFileName(r.x, r.z) }

// X and Z are the coordinates of the loaded region.
func (r *Region) X() int { return r.x }
func (r *Region) Z() int { return r.z }

// Count is the number of chunks whose payload was read.
func (r *Region) Count() int { return int(r.present.Count()) }

// IsLoaded reports whether any chunk was read.
func (r *Region) IsLoaded() bool { return r.Count() > 0 }

// Truncated returns where loading stopped early, or nil if every occupied slot was read.
func (r *Region) Truncated() *TruncatedError { return r.truncated }

// Exists reports whether the sector table lists slot i as occupied.
func (r *Region) Exists(i int) bool {
	return i >= 0 && i < ChunkSlots && r.locations[i].offset() != 0
}

// SlotError returns why an occupied slot could not be read, or nil.
func (r *Region) SlotError(i int) error { return r.corrupt[i] }

// Payload returns the raw payload of slot i, or nil if it was not read.
func (r *Region) Payload(i int) *ChunkPayload {
	if i < 0 || i >= ChunkSlots {
		return nil
	}
	return r.payloads[i]
}

// Slots lists the slots holding a payload, in ascending order.
func (r *Region) Slots() []int {
	slots := make([]int, 0, r.present.Count())
	for i, ok := r.present.NextSet(0); ok; i, ok = r.present.NextSet(i + 1) {
		slots = append(slots, int(i))
	}
	return slots
}

// Timestamp returns the last modification time recorded for slot i.
func (r *Region) Timestamp(i int) time.Time {
	if i < 0 || i >= ChunkSlots {
		return time.Time{}
	}
	return time.Unix(int64(r.timestamps[i]), 0)
}

// Chunk decodes slot i. An empty slot yields a nil chunk and no error.
func (r *Region) Chunk(i int) (*Chunk, error) {
	if i < 0 || i >= ChunkSlots {
		return nil, fmt.Errorf("%w: slot %d out of range", ErrNoChunk, i)
	}
	p := r.payloads[i]
	if p == nil {
		if err := r.corrupt[i]; err != nil {
			return nil, fmt.Errorf("%s slot %d: %w", r.Name(), i, err)
		}
		return nil, nil
	}
	root, truncated, err := p.decode()
	if err != nil {
		return nil, fmt.Errorf("%s slot %d: %w", r.Name(), i, err)
	}
	c, err := NewChunk(root)
	if err != nil {
		return nil, fmt.Errorf("%s slot %d: %w", r.Name(), i, err)
	}
	c.truncated = truncated
	return c, nil
}

// ChunkAt decodes the chunk at (x, z) inside the region, each in 0..31.
func (r *Region) ChunkAt(x, z int) (*Chunk, error) {
	if x < 0 || x >= voxel.RegionChunks || z < 0 || z >= voxel.RegionChunks {
		return nil, fmt.Errorf("%w: chunk %d,%d outside region", ErrNoChunk, x, z)
	}
	return r.Chunk(z*voxel.RegionChunks + x)
}
