package nbt

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// Marshal writes t as a named tag to w.
func Marshal(w io.Writer, t *Tag) error {
	return NewEncoder(w).Encode(t)
}

// MarshalBytes returns the encoding of t.
func MarshalBytes(t *Tag) ([]byte, error) {
	var buf bytes.Buffer
	if err := Marshal(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type Encoder struct {
	w   io.Writer
	buf [8]byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes t with its kind byte and name. An End tag is written as the single type byte.
func (e *Encoder) Encode(t *Tag) error {
	k := t.Kind()
	if k == TagEnd {
		return e.writeByte(byte(TagEnd))
	}
	if err := e.writeTag(k, t.Name); err != nil {
		return err
	}
	return e.marshal(t.Value)
}

func (e *Encoder) marshal(v Value) error {
	switch v := v.(type) {
	case End:
		return nil

	case Byte:
		return e.writeByte(byte(v))

	case Short:
		return e.writeInt16(int16(v))

	case Int:
		return e.writeInt32(int32(v))

	case Long:
		return e.writeInt64(int64(v))

	case Float:
		return e.writeInt32(int32(math.Float32bits(float32(v))))

	case Double:
		return e.writeInt64(int64(math.Float64bits(float64(v))))

	case String:
		return e.writeString(string(v))

	case ByteArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		_, err := e.w.Write(v)
		return err

	case IntArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		for _, n := range v {
			if err := e.writeInt32(n); err != nil {
				return err
			}
		}
		return nil

	case *List:
		if err := e.writeByte(byte(v.Elem)); err != nil {
			return err
		}
		if err := e.writeInt32(int32(len(v.Items))); err != nil {
			return err
		}
		for _, item := range v.Items {
			if item.Kind() != v.Elem {
				return fmt.Errorf("%w: %s in list of %s", ErrListKind, item.Kind(), v.Elem)
			}
			if err := e.marshal(item.Value); err != nil {
				return err
			}
		}
		return nil

	case *Compound:
		for _, child := range v.Tags {
			if child.Kind() == TagEnd {
				continue
			}
			if err := e.Encode(child); err != nil {
				return err
			}
		}
		return e.writeByte(byte(TagEnd))

	case nil:
		return nil
	}
	return fmt.Errorf("%w: %T", ErrInvalidTagType, v)
}

func (e *Encoder) writeTag(k Kind, name string) error {
	if err := e.writeByte(byte(k)); err != nil {
		return err
	}
	return e.writeString(name)
}

func (e *Encoder) writeString(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrStringTooLong
	}
	if err := e.writeInt16(int16(uint16(len(s)))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *Encoder) writeByte(b byte) error {
	e.buf[0] = b
	_, err := e.w.Write(e.buf[:1])
	return err
}

func (e *Encoder) writeInt16(n int16) error {
	e.buf[0], e.buf[1] = byte(n>>8), byte(n)
	_, err := e.w.Write(e.buf[:2])
	return err
}

func (e *Encoder) writeInt32(n int32) error {
	e.buf[0], e.buf[1], e.buf[2], e.buf[3] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
	_, err := e.w.Write(e.buf[:4])
	return err
}

func (e *Encoder) writeInt64(n int64) error {
	for i := 0; i < 8; i++ {
		e.buf[i] = byte(n >> (56 - 8*i))
	}
	_, err := e.w.Write(e.buf[:8])
	return err
}
