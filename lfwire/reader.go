package lfwire

import (
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/lfpkg/lferr"
)

// Field is one decoded wire field. Varint holds varint and fixed-width
// values; Bytes holds length-delimited and group contents.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

// Each walks every field of msg in wire order, calling fn for each. Framing
// errors (truncation, bad varints, invalid tags) fail with Malformed naming
// ctx. Unknown fields are handed to fn like any other; callers skip them.
func Each(ctx string, msg []byte, fn func(Field) error) error {
	b := msg
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(ctx, protowire.ParseError(n))
		}
		b = b[n:]
		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.Varint = uint64(v)
		case protowire.Fixed64Type:
			f.Varint, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(b)
		case protowire.StartGroupType:
			f.Bytes, n = protowire.ConsumeGroup(num, b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n >= 0 {
				n = -1
			}
		}
		if n < 0 {
			return malformed(fmt.Sprintf("%s.%d", ctx, num), protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// WellFormed checks that b is a sequence of correctly framed wire fields
// without interpreting any of them.
func WellFormed(ctx string, b []byte) error {
	return Each(ctx, b, func(Field) error { return nil })
}

func malformed(ctx string, cause error) error {
	return lferr.Wrap(lferr.KindDecode, lferr.RuleMalformed, ctx, cause, "invalid wire framing")
}

func (f Field) ctx(ctx string) string { return fmt.Sprintf("%s.%d", ctx, f.Num) }

func (f Field) want(ctx string, t protowire.Type) error {
	if f.Type != t {
		return lferr.Malformed(f.ctx(ctx), "wire type %d, want %d", f.Type, t)
	}
	return nil
}

// Message returns the embedded message bytes.
func (f Field) Message(ctx string) ([]byte, error) {
	if err := f.want(ctx, protowire.BytesType); err != nil {
		return nil, err
	}
	return f.Bytes, nil
}

// Text returns a length-delimited field as text, rejecting invalid UTF-8.
func (f Field) Text(ctx string) (string, error) {
	if err := f.want(ctx, protowire.BytesType); err != nil {
		return "", err
	}
	if !utf8.Valid(f.Bytes) {
		return "", lferr.Malformed(f.ctx(ctx), "invalid UTF-8")
	}
	return string(f.Bytes), nil
}

// Uint returns a varint field.
func (f Field) Uint(ctx string) (uint64, error) {
	if err := f.want(ctx, protowire.VarintType); err != nil {
		return 0, err
	}
	return f.Varint, nil
}

// Bool returns a varint field as a boolean.
func (f Field) Bool(ctx string) (bool, error) {
	v, err := f.Uint(ctx)
	return v != 0, err
}

// Int64 returns a varint field as a two's complement int64.
func (f Field) Int64(ctx string) (int64, error) {
	v, err := f.Uint(ctx)
	return int64(v), err
}

// Int32 returns a varint field as an int32, rejecting values outside the
// int32 range.
func (f Field) Int32(ctx string) (int32, error) {
	v, err := f.Int64(ctx)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, lferr.Malformed(f.ctx(ctx), "value %d overflows int32", v)
	}
	return int32(v), nil
}

// Int32s appends a repeated int32 field, accepting both packed and unpacked
// encodings.
func (f Field) Int32s(ctx string, dst []int32) ([]int32, error) {
	if f.Type != protowire.BytesType {
		v, err := f.Int32(ctx)
		if err != nil {
			return dst, err
		}
		return append(dst, v), nil
	}
	b := f.Bytes
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return dst, malformed(f.ctx(ctx), protowire.ParseError(n))
		}
		b = b[n:]
		x := int64(v)
		if x < math.MinInt32 || x > math.MaxInt32 {
			return dst, lferr.Malformed(f.ctx(ctx), "value %d overflows int32", x)
		}
		dst = append(dst, int32(x))
	}
	return dst, nil
}
