package lfwire

import (
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/lfpkg/lferr"
)

func TestEach_VisitsEveryFieldInOrder(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 99, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 1)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "x")

	var nums []protowire.Number
	err := Each("Msg", b, func(f Field) error {
		nums = append(nums, f.Num)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if len(nums) != 3 || nums[0] != 1 || nums[1] != 99 || nums[2] != 2 {
		t.Fatalf("fields: %v", nums)
	}
}

func TestEach_FramingErrors(t *testing.T) {
	truncated := protowire.AppendTag(nil, 3, protowire.BytesType)
	truncated = protowire.AppendVarint(truncated, 10)
	cases := map[string][]byte{
		"truncated length": truncated,
		"zero tag":         {0x00},
		"bad varint":       {0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		"end group":        protowire.AppendTag(nil, 1, protowire.EndGroupType),
	}
	for name, b := range cases {
		err := WellFormed("Msg", b)
		if !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
			t.Fatalf("%s: got %v", name, err)
		}
	}
}

func TestField_TypedAccessors(t *testing.T) {
	text := Field{Num: 1, Type: protowire.BytesType, Bytes: []byte("ok")}
	if s, err := text.Text("M"); err != nil || s != "ok" {
		t.Fatalf("Text: %q %v", s, err)
	}
	if _, err := (Field{Num: 1, Type: protowire.BytesType, Bytes: []byte{0xc3, 0x28}}).Text("M"); lferr.DetailOf(err) != "M.1" {
		t.Fatalf("invalid utf8: %v", err)
	}
	if _, err := text.Uint("M"); !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
		t.Fatalf("wrong wire type: %v", err)
	}

	neg := Field{Num: 2, Type: protowire.VarintType, Varint: uint64(math.MaxUint64)}
	if v, err := neg.Int32("M"); err != nil || v != -1 {
		t.Fatalf("Int32(-1): %d %v", v, err)
	}
	big := Field{Num: 2, Type: protowire.VarintType, Varint: math.MaxInt32 + 1}
	if _, err := big.Int32("M"); !lferr.Is(err, lferr.KindDecode, lferr.RuleMalformed) {
		t.Fatalf("overflow: %v", err)
	}
}

func TestField_Int32sPackedAndUnpacked(t *testing.T) {
	packed := protowire.AppendVarint(nil, 1)
	packed = protowire.AppendVarint(packed, 2)
	got, err := Field{Type: protowire.BytesType, Bytes: packed}.Int32s("M", nil)
	if err != nil {
		t.Fatalf("packed: %v", err)
	}
	got, err = Field{Type: protowire.VarintType, Varint: 3}.Int32s("M", got)
	if err != nil {
		t.Fatalf("unpacked: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v", got)
	}
}
