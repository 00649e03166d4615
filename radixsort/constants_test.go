package gpuradixsort

import "testing"

func TestScatterBlocksRoundUp(t *testing.T) {
	cases := []struct {
		n    uint32
		want uint32
	}{
		{0, 0},
		{1, 1},
		{ScatterBlockKVs, 1},
		{ScatterBlockKVs + 1, 2},
		{ScatterBlockKVs * 3, 3},
	}
	for _, c := range cases {
		if got := ScatterBlocksRoundUp(c.n); got != c.want {
			t.Errorf("ScatterBlocksRoundUp(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestPaddedSizeIsMultipleOfHistoBlockKVs(t *testing.T) {
	for _, n := range []uint32{1, 7, HistoBlockKVs - 1, HistoBlockKVs, HistoBlockKVs + 1, HistoBlockKVs * 5} {
		padded := PaddedSize(n)
		if padded < n {
			t.Fatalf("PaddedSize(%d) = %d is smaller than n", n, padded)
		}
		if padded%HistoBlockKVs != 0 {
			t.Fatalf("PaddedSize(%d) = %d is not a multiple of HistoBlockKVs (%d)", n, padded, HistoBlockKVs)
		}
	}
}

func TestHistoAndScatterBlocksAgreeOnPaddedRange(t *testing.T) {
	// SortIndirect depends on histogram and scatter dispatch counts being
	// identical for the same padded size, since ScatterBlockRows ==
	// HistoBlockRows by construction.
	for _, n := range []uint32{1, HistoBlockKVs, HistoBlockKVs*2 + 17} {
		padded := PaddedSize(n)
		if HistoBlocksRoundUp(n) != ScatterBlocksRoundUp(padded) {
			t.Fatalf("n=%d: HistoBlocksRoundUp=%d, ScatterBlocksRoundUp(padded)=%d", n, HistoBlocksRoundUp(n), ScatterBlocksRoundUp(padded))
		}
	}
}
