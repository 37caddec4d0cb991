package bitio

import "testing"

func TestWriteReadLSB(t *testing.T) {
	w := NewWriter(nil)
	w.WriteBitsLSB(0x5, 3)  // 101
	w.WriteBitsLSB(0x2A, 7) // 0101010
	w.PadToByte()

	r := NewReader(w.Bytes())
	v, err := r.ReadBitsLSB(3)
	if err != nil || v != 0x5 {
		t.Fatalf("got %d, %v, want 5", v, err)
	}
	v, err = r.ReadBitsLSB(7)
	if err != nil || v != 0x2A {
		t.Fatalf("got %d, %v, want 42", v, err)
	}
}

func TestWriteReadMSB(t *testing.T) {
	w := NewWriter(nil)
	// a 4-bit code 0b1011 written MSB-first should read back as 0b1011
	w.WriteBitsMSB(0b1011, 4)
	w.PadToByte()

	r := NewReader(w.Bytes())
	v, err := r.ReadBitsMSB(4)
	if err != nil || v != 0b1011 {
		t.Fatalf("got %04b, %v, want 1011", v, err)
	}
}

func TestMSBBitOrderInByte(t *testing.T) {
	// Writing a single MSB-first 3-bit code 0b110 should place its
	// high bit first in the bitstream, which (since bytes pack
	// LSB-first) lands in bit 0 of the output byte.
	w := NewWriter(nil)
	w.WriteBitsMSB(0b110, 3)
	w.PadToByte()
	got := w.Bytes()[0]
	want := byte(0b011) // bit0=1, bit1=1, bit2=0
	if got != want {
		t.Fatalf("got %08b, want %08b", got, want)
	}
}

func TestByteAligned(t *testing.T) {
	w := NewWriter(nil)
	w.WriteBitsLSB(0x1, 1)
	w.WriteByteAligned([]byte{0xAB, 0xCD})

	r := NewReader(w.Bytes())
	_, _ = r.ReadBitsLSB(1)
	r.AlignToByte()
	b, err := r.ReadBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0xAB || b[1] != 0xCD {
		t.Fatalf("got %x, want ab cd", b)
	}
}

func TestTruncated(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.ReadBitsLSB(9); err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestRoundTripRandomBits(t *testing.T) {
	w := NewWriter(nil)
	var widths []uint
	var vals []uint32
	seed := uint32(12345)
	for i := 0; i < 500; i++ {
		seed = seed*1103515245 + 12345
		n := uint(1 + seed%24)
		v := seed & ((1 << n) - 1)
		widths = append(widths, n)
		vals = append(vals, v)
		if i%2 == 0 {
			w.WriteBitsLSB(v, n)
		} else {
			w.WriteBitsMSB(v, n)
		}
	}
	w.PadToByte()

	r := NewReader(w.Bytes())
	for i, n := range widths {
		var got uint32
		var err error
		if i%2 == 0 {
			got, err = r.ReadBitsLSB(n)
		} else {
			got, err = r.ReadBitsMSB(n)
		}
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != vals[i] {
			t.Fatalf("read %d: got %d, want %d (width %d)", i, got, vals[i], n)
		}
	}
}
