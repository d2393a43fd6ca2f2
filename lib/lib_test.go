package lib

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeFloat32s(t *testing.T) {
	tests := []struct {
		order binary.ByteOrder
		x     []float32
		b     []byte
	}{
		{binary.LittleEndian, []float32{}, []byte{}},
		{binary.LittleEndian, []float32{1}, []byte{0, 0, 0x80, 0x3f}},
		{binary.BigEndian, []float32{1}, []byte{0x3f, 0x80, 0, 0}},
		{binary.LittleEndian, []float32{-2, 0.5},
			[]byte{0, 0, 0, 0xc0, 0, 0, 0, 0x3f}},
	}

	for i := range tests {
		// Start from a dirty, too-short buffer to check expansion.
		b := EncodeFloat32s(tests[i].order, tests[i].x, []byte{9})
		if diff := cmp.Diff(tests[i].b, b); diff != "" {
			t.Errorf("%d) EncodeFloat32s() mismatch (-want +got):\n%s",
				i, diff)
		}

		x := make([]float32, len(tests[i].x))
		DecodeFloat32s(tests[i].order, b, x)
		if diff := cmp.Diff(tests[i].x, x); diff != "" {
			t.Errorf("%d) DecodeFloat32s() mismatch (-want +got):\n%s",
				i, diff)
		}
	}
}

func TestEncodeFloat32sReusesBuffer(t *testing.T) {
	b := make([]byte, 0, 64)
	out := EncodeFloat32s(binary.LittleEndian, []float32{1, 2, 3}, b)
	if len(out) != 12 {
		t.Fatalf("Expected 12 bytes, got %d.", len(out))
	} else if &out[0] != &b[:1][0] {
		t.Errorf("Expected EncodeFloat32s to reuse a large enough buffer.")
	}
}

func TestWriteAsBytes(t *testing.T) {
	x := []float32{1, 2, 3, 4, 5, 6}
	buf := &bytes.Buffer{}

	b, err := WriteAsBytes(buf, x, nil)
	if err != nil {
		t.Fatalf("WriteAsBytes() returned error: %s", err.Error())
	} else if len(b) != 4*len(x) {
		t.Errorf("Expected scratch buffer with %d bytes, got %d.",
			4*len(x), len(b))
	}

	order := SystemByteOrder()
	raw := buf.Bytes()
	for i := range x {
		got := math.Float32frombits(order.Uint32(raw[4*i:]))
		if got != x[i] {
			t.Errorf("%d) Expected %g, got %g.", i, x[i], got)
		}
	}
}

func TestSystemByteOrder(t *testing.T) {
	order := SystemByteOrder()
	if order != binary.LittleEndian && order != binary.BigEndian {
		t.Errorf("SystemByteOrder() returned %v.", order)
	}
}
