package gpuradixsort

import "testing"

func TestSorterStateRoundTrip(t *testing.T) {
	want := SorterState{NumKeys: 12345, PaddedSize: 15360, EvenPass: 2, OddPass: 3}
	got := decodeSorterState(want.bytes()[:])
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestSorterStateByteLayoutIsLittleEndian(t *testing.T) {
	s := SorterState{NumKeys: 1, PaddedSize: 2, EvenPass: 3, OddPass: 4}
	b := s.bytes()
	want := [sorterStateSize]byte{
		1, 0, 0, 0,
		2, 0, 0, 0,
		3, 0, 0, 0,
		4, 0, 0, 0,
	}
	if b != want {
		t.Fatalf("bytes() = %v, want %v", b, want)
	}
}

func TestNumKeysBytesPatchesOnlyFirstField(t *testing.T) {
	patch := numKeysBytes(0xdeadbeef)
	want := [4]byte{0xef, 0xbe, 0xad, 0xde}
	if patch != want {
		t.Fatalf("numKeysBytes(0xdeadbeef) = %v, want %v", patch, want)
	}
}
