package nbt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/slices"
)

const (
	maxDepth    = 512
	maxArrayLen = 1 << 24

	// Declared lengths are only trusted as far as the input backs them.
	listHint   = 1024
	arrayPiece = 64 << 10
)

// Unmarshal decodes one named tag from data.
func Unmarshal(data []byte) (*Tag, error) {
	return NewDecoder(bytes.NewReader(data)).Decode()
}

// Decoder reads named tags from a stream.
//
// Decoding is lenient about input that ends early, which happens with files that the server
// was still writing: a fixed-width number past the end reads as zero (NaN for floats), a
// string as empty, an array or list as the part that was read, and a compound as closed.
// Decoding then completes and Truncated reports that it happened. Unknown tag kinds and
// impossible lengths are still errors.
type Decoder struct {
	r         io.Reader
	buf       [8]byte
	truncated bool
}

// NewDecoder returns a decoder reading from r. Readers that cannot read a single byte
// efficiently are buffered, so the decoder may read past the end of the tag.
func NewDecoder(r io.Reader) *Decoder {
	if _, ok := r.(io.ByteReader); !ok {
		r = bufio.NewReader(r)
	}
	return &Decoder{r: r}
}

// Truncated reports whether the input ended before the tags read so far were complete.
func (d *Decoder) Truncated() bool { return d.truncated }

// Decode reads the next named tag. At the end of the input it returns an End tag.
func (d *Decoder) Decode() (*Tag, error) {
	k, err := d.readKind()
	if err != nil {
		return nil, err
	}
	if k == TagEnd {
		return &Tag{Value: End{}}, nil
	}
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTagType, byte(k))
	}
	name, err := d.readString()
	if err != nil {
		return nil, err
	}
	v, err := d.readPayload(k, 0)
	if err != nil {
		return nil, fmt.Errorf("nbt: reading %s %q: %w", k, name, err)
	}
	return &Tag{Name: name, Value: v}, nil
}

func (d *Decoder) readPayload(k Kind, depth int) (Value, error) {
	switch k {
	case TagEnd:
		return End{}, nil

	case TagByte:
		b, _, err := d.read(1)
		return Byte(int8(b[0])), err

	case TagShort:
		b, _, err := d.read(2)
		return Short(int16(binary.BigEndian.Uint16(b))), err

	case TagInt:
		b, _, err := d.read(4)
		return Int(int32(binary.BigEndian.Uint32(b))), err

	case TagLong:
		b, _, err := d.read(8)
		return Long(int64(binary.BigEndian.Uint64(b))), err

	case TagFloat:
		b, short, err := d.read(4)
		if short {
			return Float(float32(math.NaN())), err
		}
		return Float(math.Float32frombits(binary.BigEndian.Uint32(b))), err

	case TagDouble:
		b, short, err := d.read(8)
		if short {
			return Double(math.NaN()), err
		}
		return Double(math.Float64frombits(binary.BigEndian.Uint64(b))), err

	case TagString:
		s, err := d.readString()
		return String(s), err

	case TagByteArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		arr, err := d.readArray(n)
		if err != nil {
			return nil, err
		}
		return ByteArray(arr), nil

	case TagIntArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		raw, err := d.readArray(4 * n)
		if err != nil {
			return nil, err
		}
		// A partly read last int is zero padded.
		if rem := len(raw) % 4; rem != 0 {
			raw = append(raw, make([]byte, 4-rem)...)
		}
		arr := make([]int32, len(raw)/4)
		for i := range arr {
			arr[i] = int32(binary.BigEndian.Uint32(raw[4*i:]))
		}
		return IntArray(arr), nil

	case TagList:
		if depth >= maxDepth {
			return nil, ErrTooDeep
		}
		elem, err := d.readKind()
		if err != nil {
			return nil, err
		}
		if !elem.Valid() {
			return nil, fmt.Errorf("%w: list of %d", ErrInvalidTagType, byte(elem))
		}
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		l := &List{Elem: elem}
		if n > 0 {
			l.Items = make([]*Tag, 0, min(n, listHint))
		}
		// Once the input has ended every further element would be a zero value.
		for i := 0; i < n && !d.truncated; i++ {
			v, err := d.readPayload(elem, depth+1)
			if err != nil {
				return nil, err
			}
			l.Items = append(l.Items, &Tag{Value: v})
		}
		return l, nil

	case TagCompound:
		if depth >= maxDepth {
			return nil, ErrTooDeep
		}
		c := &Compound{}
		for {
			child, err := d.readKind()
			if err != nil {
				return nil, err
			}
			if child == TagEnd {
				return c, nil
			}
			if !child.Valid() {
				return nil, fmt.Errorf("%w: %d", ErrInvalidTagType, byte(child))
			}
			name, err := d.readString()
			if err != nil {
				return nil, err
			}
			v, err := d.readPayload(child, depth+1)
			if err != nil {
				return nil, err
			}
			c.Tags = append(c.Tags, &Tag{Name: name, Value: v})
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidTagType, byte(k))
}

// readKind reads a type byte. The end of the input reads as TagEnd.
func (d *Decoder) readKind() (Kind, error) {
	b, _, err := d.read(1)
	return Kind(b[0]), err
}

func (d *Decoder) readString() (string, error) {
	b, short, err := d.read(2)
	if err != nil || short {
		return "", err
	}
	s := make([]byte, binary.BigEndian.Uint16(b))
	if short, err = d.fill(s); err != nil || short {
		return "", err
	}
	return string(s), nil
}

func (d *Decoder) readLength() (int, error) {
	b, _, err := d.read(4)
	if err != nil {
		return 0, err
	}
	n := int32(binary.BigEndian.Uint32(b))
	if n < 0 || n > maxArrayLen {
		return 0, fmt.Errorf("%w: %d", ErrMalformedLength, n)
	}
	return int(n), nil
}

// readArray reads an n byte array in pieces, so a length prefix is never allocated before the
// input has delivered it. If the input ends first, the array is cut there and the decoder is
// marked truncated.
func (d *Decoder) readArray(n int) ([]byte, error) {
	arr := make([]byte, 0, min(n, arrayPiece))
	for len(arr) < n {
		k := min(n-len(arr), arrayPiece)
		arr = slices.Grow(arr, k)
		got, err := io.ReadFull(d.r, arr[len(arr):len(arr)+k])
		arr = arr[:len(arr)+got]
		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			d.truncated = true
			return arr, nil
		default:
			return nil, err
		}
	}
	return arr, nil
}

// read fills the scratch buffer with n bytes. A fixed-width value cut off by the end of the
// input reads as all zero bytes.
func (d *Decoder) read(n int) ([]byte, bool, error) {
	b := d.buf[:n]
	short, err := d.fill(b)
	if short {
		clear(b)
	}
	return b, short, err
}

// fill reads len(p) bytes. If the input ends first, the rest of p is zeroed, the decoder is
// marked truncated and short is true. Other read errors are returned as they are.
func (d *Decoder) fill(p []byte) (short bool, err error) {
	n, err := io.ReadFull(d.r, p)
	switch err {
	case nil:
		return false, nil
	case io.EOF, io.ErrUnexpectedEOF:
		clear(p[n:])
		d.truncated = true
		return true, nil
	}
	return false, err
}
