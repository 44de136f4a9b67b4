package anvil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/astei/anvilview/internal/regiontest"
	"github.com/astei/anvilview/nbt"
)

func sectionsOnly(y int, id byte) *nbt.Tag {
	return nbt.NewCompound("", nbt.New("Sections", &nbt.List{
		Elem:  nbt.TagCompound,
		Items: []*nbt.Tag{regiontest.SectionTag(y, id)},
	}))
}

func TestRegionSingleChunk(t *testing.T) {
	root := nbt.NewCompound("", nbt.NewList("Sections", &nbt.Compound{Tags: []*nbt.Tag{
		nbt.New("Y", nbt.Byte(0)),
		nbt.New("Blocks", nbt.ByteArray(bytes.Repeat([]byte{1}, 4096))),
	}}))
	dir := t.TempDir()
	regiontest.Write(t, dir, 0, 0, regiontest.Bytes(t, regiontest.Slot{Index: 0, Root: root}))

	r, err := OpenRegion(dir, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 || !r.IsLoaded() {
		t.Fatalf("Count() = %d, IsLoaded() = %v", r.Count(), r.IsLoaded())
	}
	if r.Truncated() != nil {
		t.Errorf("Truncated() = %v", r.Truncated())
	}
	c, err := r.Chunk(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Section(0).BlockID(0); got != 1 {
		t.Errorf("Section(0).BlockID(0) = %d, want 1", got)
	}
}

func TestRegionEmptyHeader(t *testing.T) {
	dir := t.TempDir()
	regiontest.Write(t, dir, 2, -3, regiontest.Bytes(t))

	r, err := OpenRegion(dir, 2, -3)
	if err != nil {
		t.Fatal(err)
	}
	if r.IsLoaded() || r.Count() != 0 {
		t.Errorf("IsLoaded() = %v, Count() = %d", r.IsLoaded(), r.Count())
	}
	if r.Truncated() != nil {
		t.Errorf("Truncated() = %v", r.Truncated())
	}
	for i := 0; i < ChunkSlots; i++ {
		if c, err := r.Chunk(i); c != nil || err != nil {
			t.Fatalf("Chunk(%d) = %v, %v", i, c, err)
		}
	}
}

func TestRegionMissingFile(t *testing.T) {
	r, err := OpenRegion(t.TempDir(), 5, -5)
	if err != nil {
		t.Fatal(err)
	}
	if r.IsLoaded() {
		t.Error("missing file reported as loaded")
	}
	if r.Name() != "r.5.-5.mca" {
		t.Errorf("Name() = %q", r.Name())
	}
}

func TestRegionCompression(t *testing.T) {
	for _, method := range []byte{regiontest.Gzip, regiontest.Zlib, regiontest.None} {
		data := regiontest.Bytes(t, regiontest.Slot{
			Index:  33,
			Root:   regiontest.ChunkTag(-31, 1, 64, 4, regiontest.SectionTag(0, 1)),
			Method: method,
		})
		r, err := ReadRegion(bytes.NewReader(data), -1, 0)
		if err != nil {
			t.Fatal(err)
		}
		if got := r.Payload(33).Compression; got != Compression(method) {
			t.Errorf("Compression = %s, want %d", got, method)
		}
		c, err := r.ChunkAt(1, 1)
		if err != nil {
			t.Fatalf("method %d: %v", method, err)
		}
		if x, z, ok := c.Pos(); !ok || x != -31 || z != 1 {
			t.Errorf("method %d: Pos() = %d, %d, %v", method, x, z, ok)
		}
	}
}

func TestRegionPayloadErrors(t *testing.T) {
	data := regiontest.Bytes(t,
		regiontest.Slot{Index: 0, Method: 7, Raw: []byte{1, 2, 3}},
		regiontest.Slot{Index: 1, Method: regiontest.Zlib, Raw: []byte("not zlib at all")},
		regiontest.Slot{Index: 2, Method: regiontest.None, Raw: []byte{byte(nbt.TagInt), 0, 0, 0, 0, 0, 1}},
		regiontest.Slot{Index: 3, Method: regiontest.None, Raw: []byte{99}},
	)
	r, err := ReadRegion(bytes.NewReader(data), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", r.Count())
	}

	tests := []struct {
		slot int
		err  error
	}{
		{0, ErrInvalidCompression},
		{1, ErrCompression},
		{2, ErrInvalidChunk},
		{3, nbt.ErrInvalidTagType},
	}
	for _, test := range tests {
		if _, err := r.Chunk(test.slot); !errors.Is(err, test.err) {
			t.Errorf("Chunk(%d) err = %v, want %v", test.slot, err, test.err)
		}
	}
}

func TestRegionTruncated(t *testing.T) {
	data := regiontest.Bytes(t,
		regiontest.Slot{Index: 0, Root: regiontest.ChunkTag(0, 0, 64, 1)},
		regiontest.Slot{Index: 1, Root: regiontest.ChunkTag(1, 0, 64, 1)},
		regiontest.Slot{Index: 2, Root: regiontest.ChunkTag(2, 0, 64, 1)},
	)
	second := int64(binary.BigEndian.Uint32(data[4:]) >> 8 * SectorSize)
	data = data[:second+10]

	r, err := ReadRegion(bytes.NewReader(data), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	tr := r.Truncated()
	if tr == nil {
		t.Fatal("Truncated() = nil")
	}
	if tr.Slot != 1 || !errors.Is(tr, ErrTruncated) {
		t.Errorf("Truncated() = %v", tr)
	}
	if c, err := r.Chunk(0); err != nil || c == nil {
		t.Errorf("Chunk(0) = %v, %v", c, err)
	}
	if c, err := r.Chunk(2); err != nil || c != nil {
		t.Errorf("Chunk(2) after the stop = %v, %v", c, err)
	}
	if !r.Exists(2) {
		t.Error("Exists(2) = false, the header still lists it")
	}
}

func TestRegionTruncatedHeader(t *testing.T) {
	data := regiontest.Bytes(t, regiontest.Slot{Index: 0, Root: regiontest.ChunkTag(0, 0, 64, 1)})
	r, err := ReadRegion(bytes.NewReader(data[:100]), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 0 || r.Truncated() == nil {
		t.Errorf("Count() = %d, Truncated() = %v", r.Count(), r.Truncated())
	}
}

func TestRegionShortLastSector(t *testing.T) {
	data := regiontest.Bytes(t, regiontest.Slot{Index: 0, Root: regiontest.ChunkTag(0, 0, 64, 1)})
	length := binary.BigEndian.Uint32(data[2*SectorSize:])
	data = data[:2*SectorSize+4+int(length)]

	r, err := ReadRegion(bytes.NewReader(data), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 || r.Truncated() != nil {
		t.Errorf("Count() = %d, Truncated() = %v", r.Count(), r.Truncated())
	}
}

func TestRegionInvalidLength(t *testing.T) {
	data := regiontest.Bytes(t,
		regiontest.Slot{Index: 0, Root: regiontest.ChunkTag(0, 0, 64, 1)},
		regiontest.Slot{Index: 1, Root: regiontest.ChunkTag(1, 0, 64, 1)},
	)
	binary.BigEndian.PutUint32(data[2*SectorSize:], 0x7fffffff)

	r, err := ReadRegion(bytes.NewReader(data), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 || r.Truncated() != nil {
		t.Errorf("Count() = %d, Truncated() = %v", r.Count(), r.Truncated())
	}
	if !errors.Is(r.SlotError(0), ErrInvalidChunkLength) {
		t.Errorf("SlotError(0) = %v", r.SlotError(0))
	}
	if _, err := r.Chunk(0); !errors.Is(err, ErrInvalidChunkLength) {
		t.Errorf("Chunk(0) err = %v", err)
	}
	if c, err := r.Chunk(1); err != nil || c == nil {
		t.Errorf("Chunk(1) = %v, %v", c, err)
	}
}

func TestRegionZeroSectorEntry(t *testing.T) {
	data := regiontest.Bytes(t,
		regiontest.Slot{Index: 0, Root: regiontest.ChunkTag(0, 0, 64, 1)},
		regiontest.Slot{Index: 1, Root: regiontest.ChunkTag(1, 0, 64, 1)},
	)
	// Keep slot 0's offset and clear its sector count.
	data[3] = 0

	r, err := ReadRegion(bytes.NewReader(data), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 || r.Truncated() != nil {
		t.Errorf("Count() = %d, Truncated() = %v", r.Count(), r.Truncated())
	}
	if !errors.Is(r.SlotError(0), ErrInvalidChunkLength) {
		t.Errorf("SlotError(0) = %v", r.SlotError(0))
	}
	if c, err := r.Chunk(1); err != nil || c == nil {
		t.Errorf("Chunk(1) = %v, %v", c, err)
	}
}

func TestRegionSlotsAndTimestamps(t *testing.T) {
	data := regiontest.Bytes(t,
		regiontest.Slot{Index: 3, Root: sectionsOnly(0, 1), Timestamp: 1600000000},
		regiontest.Slot{Index: 40, Root: sectionsOnly(0, 2)},
	)
	r, err := ReadRegion(bytes.NewReader(data), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{3, 40}, r.Slots()); diff != "" {
		t.Errorf("Slots() mismatch (-want +got):\n%s", diff)
	}
	if got := r.Timestamp(3).Unix(); got != 1600000000 {
		t.Errorf("Timestamp(3) = %d", got)
	}
	if _, err := r.Chunk(ChunkSlots); !errors.Is(err, ErrNoChunk) {
		t.Errorf("Chunk(%d) err = %v", ChunkSlots, err)
	}
	if _, err := r.ChunkAt(32, 0); !errors.Is(err, ErrNoChunk) {
		t.Errorf("ChunkAt(32, 0) err = %v", err)
	}
	c, err := r.ChunkAt(8, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Section(0).BlockID(100); got != 2 {
		t.Errorf("ChunkAt(8, 1) block = %d, want 2", got)
	}
}

func TestRegionLoadKeepsOneRegion(t *testing.T) {
	dir := t.TempDir()
	path := regiontest.Write(t, dir, 0, 0, regiontest.Bytes(t, regiontest.Slot{Index: 0, Root: sectionsOnly(0, 1)}))

	r := NewRegion(dir)
	if err := r.Load(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	// Same coordinates: served from memory.
	if err := r.Load(0, 0); err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 {
		t.Errorf("cached Count() = %d, want 1", r.Count())
	}

	if err := r.Load(1, 0); err != nil {
		t.Fatal(err)
	}
	if r.Count() != 0 || r.X() != 1 {
		t.Errorf("after switching: Count() = %d, X() = %d", r.Count(), r.X())
	}
	if err := r.Load(0, 0); err != nil {
		t.Fatal(err)
	}
	if r.IsLoaded() {
		t.Error("deleted region still loaded")
	}
}

func TestRegionGoMCWriter(t *testing.T) {
	dir := t.TempDir()
	regiontest.WriteGoMC(t, dir, -2, 7,
		regiontest.Slot{Index: 0, Root: regiontest.ChunkTag(-64, 224, 70, 3, regiontest.SectionTag(4, 12))},
		regiontest.Slot{Index: 33, Root: regiontest.ChunkTag(-63, 225, 71, 5), Method: regiontest.Gzip},
	)

	r, err := OpenRegion(dir, -2, 7)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 2 || r.Truncated() != nil {
		t.Fatalf("Count() = %d, Truncated() = %v", r.Count(), r.Truncated())
	}
	first, err := r.Chunk(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := first.Section(4).BlockID(4095); got != 12 {
		t.Errorf("BlockID = %d, want 12", got)
	}
	second, err := r.ChunkAt(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if x, z, _ := second.Pos(); x != -63 || z != 225 {
		t.Errorf("Pos() = %d, %d", x, z)
	}
	if !r.Exists(33) || r.Exists(1) {
		t.Errorf("Exists(33) = %v, Exists(1) = %v", r.Exists(33), r.Exists(1))
	}
	if _, err := os.Stat(filepath.Join(dir, "r.-2.7.mca")); err != nil {
		t.Error(err)
	}
}
