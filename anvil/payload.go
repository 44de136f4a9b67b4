package anvil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/astei/anvilview/nbt"
)

type Compression byte

const (
	CompressionGzip Compression = 1
	CompressionZlib Compression = 2
	CompressionNone Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionNone:
		return "none"
	}
	return fmt.Sprintf("Compression(%d)", byte(c))
}

// ChunkPayload is one chunk as stored in a region file.
type ChunkPayload struct {
	// Length is the declared size of the payload. It counts the compression byte but not
	// the length field itself.
	Length      int32
	Compression Compression
	data        []byte
}

// parsePayload splits a raw payload into its header and body. alloc is the size of the
// sectors reserved for it; raw may be shorter if the file ends early.
func parsePayload(raw []byte, alloc int) (*ChunkPayload, error) {
	if len(raw) < 5 {
		return nil, fmt.Errorf("%w: payload header is %d bytes", ErrTruncated, len(raw))
	}
	p := &ChunkPayload{
		Length:      int32(binary.BigEndian.Uint32(raw)),
		Compression: Compression(raw[4]),
	}
	if p.Length < 1 || int64(p.Length) > int64(alloc-4) {
		return nil, fmt.Errorf("%w: %d bytes in %d sectors", ErrInvalidChunkLength, p.Length, alloc/SectorSize)
	}
	end := 4 + int(p.Length)
	if end > len(raw) {
		return nil, fmt.Errorf("%w: payload declares %d bytes, %d present", ErrTruncated, p.Length, len(raw)-4)
	}
	p.data = raw[5:end]
	return p, nil
}

// Data returns the compressed body.
func (p *ChunkPayload) Data() []byte { return p.data }

// Reader returns a stream of the decompressed body.
func (p *ChunkPayload) Reader() (io.ReadCloser, error) {
	body := bytes.NewReader(p.data)
	switch p.Compression {
	case CompressionGzip:
		return gzip.NewReader(body)
	case CompressionZlib:
		return zlib.NewReader(body)
	case CompressionNone:
		return io.NopCloser(body), nil
	}
	return nil, fmt.Errorf("%w: method %d", ErrInvalidCompression, byte(p.Compression))
}

// Decode decompresses the body and decodes its root tag, which must be a compound.
func (p *ChunkPayload) Decode() (*nbt.Tag, error) {
	root, _, err := p.decode()
	return root, err
}

func (p *ChunkPayload) decode() (root *nbt.Tag, truncated bool, err error) {
	rc, err := p.Reader()
	if err != nil {
		if errors.Is(err, ErrInvalidCompression) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	defer rc.Close()

	d := nbt.NewDecoder(rc)
	root, err = d.Decode()
	if err != nil {
		if isFormatError(err) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	if root.Kind() != nbt.TagCompound {
		return nil, false, fmt.Errorf("%w: root is %s", ErrInvalidChunk, root.Kind())
	}
	return root, d.Truncated(), nil
}

func isFormatError(err error) bool {
	return errors.Is(err, nbt.ErrInvalidTagType) ||
		errors.Is(err, nbt.ErrMalformedLength) ||
		errors.Is(err, nbt.ErrTooDeep)
}
