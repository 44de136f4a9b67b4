package regiontest

import (
	"bytes"
	"testing"

	"github.com/Tnze/go-mc/save/region"
)

// The hand-built layout must be readable by an independent implementation.
func TestBytesReadableByGoMC(t *testing.T) {
	slots := []Slot{
		{Index: 0, Root: ChunkTag(0, 0, 64, 1, SectionTag(0, 1))},
		{Index: 33, Root: ChunkTag(1, 1, 64, 1), Method: Gzip},
		{Index: 1023, Root: ChunkTag(31, 31, 64, 1), Method: None},
	}
	dir := t.TempDir()
	path := Write(t, dir, 0, 0, Bytes(t, slots...))

	r, err := region.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	for _, s := range slots {
		x, z := s.Index%32, s.Index/32
		if !r.ExistSector(x, z) {
			t.Errorf("slot %d missing", s.Index)
			continue
		}
		data, err := r.ReadSector(x, z)
		if err != nil {
			t.Fatalf("slot %d: %v", s.Index, err)
		}
		want := append([]byte{s.method()}, s.Body(t)...)
		if !bytes.Equal(data, want) {
			t.Errorf("slot %d: go-mc read %d bytes, want %d", s.Index, len(data), len(want))
		}
	}
	if r.ExistSector(1, 0) {
		t.Error("slot 1 reported present")
	}
}
