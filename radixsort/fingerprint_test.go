package gpuradixsort

import "testing"

func TestFingerprintIsOrderSensitive(t *testing.T) {
	a := []uint32{1, 2, 3, 4}
	b := []uint32{4, 3, 2, 1}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("fingerprint should differ for different orderings of the same set")
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	keys := []uint32{9, 1, 8, 2, 7, 3}
	if Fingerprint(keys) != Fingerprint(append([]uint32(nil), keys...)) {
		t.Fatalf("fingerprint should be stable across calls for identical input")
	}
}

func TestFingerprintDetectsSingleElementChange(t *testing.T) {
	a := []uint32{1, 2, 3, 4, 5}
	b := []uint32{1, 2, 3, 4, 6}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("fingerprint collided for inputs differing in one element")
	}
}
