package gpuradixsort

import (
	"math/rand"
	"sort"
	"testing"
)

func TestBiasInt32PreservesOrder(t *testing.T) {
	values := []int32{5, -5, 0, -2147483648, 2147483647, -1, 1}
	sorted := append([]int32(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	keys := make([]uint32, len(values))
	for i, v := range values {
		keys[i] = BiasInt32ToKey(v)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for i, k := range keys {
		if got := UnbiasKeyToInt32(k); got != sorted[i] {
			t.Fatalf("index %d: got %d, want %d", i, got, sorted[i])
		}
	}
}

func TestBiasFloat32PreservesOrder(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	values := make([]float32, 200)
	for i := range values {
		values[i] = (r.Float32() - 0.5) * 1e6
	}
	sorted := append([]float32(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	keys := make([]uint32, len(values))
	for i, v := range values {
		keys[i] = BiasFloat32ToKey(v)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for i, k := range keys {
		if got := UnbiasKeyToFloat32(k); got != sorted[i] {
			t.Fatalf("index %d: got %v, want %v", i, got, sorted[i])
		}
	}
}

func TestBiasInt32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2147483647, -2147483648, 42, -42} {
		if got := UnbiasKeyToInt32(BiasInt32ToKey(v)); got != v {
			t.Errorf("round trip for %d: got %d", v, got)
		}
	}
}
