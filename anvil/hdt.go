package anvil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const (
	topoMagic   = 0x4854
	topoVersion = 1
)

var ErrInvalidTopo = errors.New("anvil: invalid topo file")

type topoHeader struct {
	Magic   uint16
	Version uint8
	X       int32
	Z       int32
}

// TopoFileName is the name under which a region's survey is stored. The contents are the
// header and zstd body written by WriteTopo, not two raw 512x512 planes, so readers of the
// older uncompressed .hdt layout cannot open these files.
func TopoFileName(x, z int) string {
	return fmt.Sprintf("r.%d.%d.hdt", x, z)
}

// WriteTopo writes t as a header followed by the three planes, zstd compressed.
func WriteTopo(w io.Writer, t *Topo) error {
	header := topoHeader{Magic: topoMagic, Version: topoVersion, X: int32(t.X), Z: int32(t.Z)}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return err
	}

	var body bytes.Buffer
	body.Grow(3 * TopoSize)
	body.Write(t.Height)
	body.Write(t.Fluid)
	body.Write(t.Biome)
	return writeZstdCompressed(w, body)
}

// writeZstdCompressed writes the compressed length, the uncompressed length and then the
// compressed bytes.
func writeZstdCompressed(w io.Writer, buf bytes.Buffer) error {
	uncompressedSize := buf.Len()

	var compressed bytes.Buffer
	zw, err := zstd.NewWriter(&compressed)
	if err != nil {
		return err
	}
	if _, err = buf.WriteTo(zw); err != nil {
		zw.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		return err
	}

	if err = binary.Write(w, binary.BigEndian, uint32(compressed.Len())); err != nil {
		return err
	}
	if err = binary.Write(w, binary.BigEndian, uint32(uncompressedSize)); err != nil {
		return err
	}
	_, err = compressed.WriteTo(w)
	return err
}

// ReadTopo reads a survey written by WriteTopo.
func ReadTopo(r io.Reader) (*Topo, error) {
	var header topoHeader
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, err
	}
	if header.Magic != topoMagic {
		return nil, fmt.Errorf("%w: magic %#04x", ErrInvalidTopo, header.Magic)
	}
	if header.Version != topoVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidTopo, header.Version)
	}

	var sizes struct {
		Compressed   uint32
		Uncompressed uint32
	}
	if err := binary.Read(r, binary.BigEndian, &sizes); err != nil {
		return nil, err
	}
	if sizes.Uncompressed != 3*TopoSize {
		return nil, fmt.Errorf("%w: body is %d bytes", ErrInvalidTopo, sizes.Uncompressed)
	}

	zr, err := zstd.NewReader(io.LimitReader(r, int64(sizes.Compressed)))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	body := make([]byte, sizes.Uncompressed)
	if _, err = io.ReadFull(zr, body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopo, err)
	}
	return &Topo{
		X:      int(header.X),
		Z:      int(header.Z),
		Height: body[:TopoSize:TopoSize],
		Fluid:  body[TopoSize : 2*TopoSize : 2*TopoSize],
		Biome:  body[2*TopoSize:],
	}, nil
}

// SaveTopo writes t into dir under its TopoFileName.
func SaveTopo(dir string, t *Topo) (err error) {
	f, err := os.Create(filepath.Join(dir, TopoFileName(t.X, t.Z)))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteTopo(f, t)
}

// LoadTopo reads the survey of region (x, z) from dir.
func LoadTopo(dir string, x, z int) (*Topo, error) {
	f, err := os.Open(filepath.Join(dir, TopoFileName(x, z)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTopo(f)
}
