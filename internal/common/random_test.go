package common

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString_Sizes(t *testing.T) {
	for _, size := range []int{0, 1, 16, 32} {
		s, err := MakeRandHexString(size)
		if err != nil {
			t.Fatalf("size %d: unexpected error: %v", size, err)
		}
		if len(s) != size*2 {
			t.Fatalf("size %d: got length %d, want %d", size, len(s), size*2)
		}
		if _, err := hex.DecodeString(s); err != nil {
			t.Fatalf("size %d: not valid hex: %v", size, err)
		}
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		s, err := MakeRandHexString(16)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[s] {
			t.Fatalf("duplicate id %q after %d draws", s, i)
		}
		seen[s] = true
	}
}

func TestWipeByteArray(t *testing.T) {
	buf := bytes.Repeat([]byte{0xff}, 32)
	WipeByteArray(buf)
	if !bytes.Equal(buf, make([]byte, 32)) {
		t.Fatalf("buffer not zeroed: %x", buf)
	}
}

func TestWipeByteArray_NilAndEmpty(t *testing.T) {
	WipeByteArray(nil)
	WipeByteArray([]byte{})
}
