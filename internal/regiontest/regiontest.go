// Package regiontest builds region files for tests.
package regiontest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tnze/go-mc/save/region"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/astei/anvilview/nbt"
	"github.com/astei/anvilview/voxel"
)

const sectorSize = 4096

// Compression methods as stored in a payload header.
const (
	Gzip byte = 1
	Zlib byte = 2
	None byte = 3
)

// Slot is one chunk to store.
type Slot struct {
	Index int
	Root  *nbt.Tag
	// Method defaults to Zlib.
	Method    byte
	Timestamp uint32
	// Raw replaces the encoded payload body when set.
	Raw []byte
}

// Body returns the compressed NBT of the slot.
func (s Slot) Body(t testing.TB) []byte {
	t.Helper()
	if s.Raw != nil {
		return s.Raw
	}
	data, err := nbt.MarshalBytes(s.Root)
	if err != nil {
		t.Fatalf("encoding slot %d: %v", s.Index, err)
	}
	return Compress(t, s.method(), data)
}

func (s Slot) method() byte {
	if s.Method == 0 {
		return Zlib
	}
	return s.Method
}

// Compress compresses data with the given payload method.
func Compress(t testing.TB, method byte, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch method {
	case Gzip:
		w := gzip.NewWriter(&buf)
		mustWrite(t, w, data)
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	case Zlib:
		w := zlib.NewWriter(&buf)
		mustWrite(t, w, data)
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	default:
		buf.Write(data)
	}
	return buf.Bytes()
}

func mustWrite(t testing.TB, w interface{ Write([]byte) (int, error) }, data []byte) {
	t.Helper()
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
}

// Bytes lays out a region file holding the slots. Payloads follow the header in slot order,
// each padded to whole sectors.
func Bytes(t testing.TB, slots ...Slot) []byte {
	t.Helper()
	header := make([]byte, 2*sectorSize)
	var payloads bytes.Buffer
	next := 2
	for _, s := range slots {
		body := s.Body(t)
		var p bytes.Buffer
		binary.Write(&p, binary.BigEndian, int32(len(body)+1))
		p.WriteByte(s.method())
		p.Write(body)
		sectors := (p.Len() + sectorSize - 1) / sectorSize
		p.Write(make([]byte, sectors*sectorSize-p.Len()))

		binary.BigEndian.PutUint32(header[4*s.Index:], uint32(next)<<8|uint32(sectors))
		binary.BigEndian.PutUint32(header[sectorSize+4*s.Index:], s.Timestamp)
		payloads.Write(p.Bytes())
		next += sectors
	}
	return append(header, payloads.Bytes()...)
}

// Write stores data as the file of region (x, z) in dir and returns its path.
func Write(t testing.TB, dir string, x, z int, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, voxel.RegionFileName(x, z))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteGoMC stores the slots as region (x, z) in dir using go-mc's region writer.
func WriteGoMC(t testing.TB, dir string, x, z int, slots ...Slot) string {
	t.Helper()
	path := filepath.Join(dir, voxel.RegionFileName(x, z))
	r, err := region.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for _, s := range slots {
		data := append([]byte{s.method()}, s.Body(t)...)
		if err := r.WriteSector(s.Index%voxel.RegionChunks, s.Index/voxel.RegionChunks, data); err != nil {
			t.Fatalf("writing slot %d: %v", s.Index, err)
		}
	}
	return path
}

// SectionTag returns a section compound at y with every block set to id's low byte. The
// Data and light arrays are present and zero.
func SectionTag(y int, id byte) *nbt.Tag {
	return &nbt.Tag{Value: &nbt.Compound{Tags: []*nbt.Tag{
		nbt.New("Y", nbt.Byte(y)),
		nbt.New("Blocks", nbt.ByteArray(bytes.Repeat([]byte{id}, 4096))),
		nbt.New("Data", make(nbt.ByteArray, 2048)),
		nbt.New("SkyLight", make(nbt.ByteArray, 2048)),
		nbt.New("BlockLight", make(nbt.ByteArray, 2048)),
	}}}
}

// ChunkTag returns a chunk in the usual {"Level": {...}} layout with a height map and biome
// map filled with height and biome.
func ChunkTag(x, z int, height int32, biome byte, sections ...*nbt.Tag) *nbt.Tag {
	heights := make(nbt.IntArray, 256)
	for i := range heights {
		heights[i] = height
	}
	list := &nbt.List{Elem: nbt.TagCompound, Items: sections}
	return nbt.NewCompound("",
		nbt.NewCompound("Level",
			nbt.New("xPos", nbt.Int(x)),
			nbt.New("zPos", nbt.Int(z)),
			nbt.New("LastUpdate", nbt.Long(1000)),
			nbt.New("TerrainPopulated", nbt.Byte(1)),
			nbt.New("LightPopulated", nbt.Byte(1)),
			nbt.New("V", nbt.Byte(1)),
			nbt.New("InhabitedTime", nbt.Long(42)),
			nbt.New("Biomes", nbt.ByteArray(bytes.Repeat([]byte{biome}, 256))),
			nbt.New("HeightMap", heights),
			nbt.New("Sections", list),
			nbt.NewList("Entities"),
			nbt.NewList("TileEntities"),
		),
	)
}
