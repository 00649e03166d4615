package gpuradixsort

import (
	"fmt"
	"strconv"
	"strings"
)

// validSubgroupSizes enumerates the subgroup widths the shader prelude knows
// how to specialize for. Every entry evenly divides RadixSize, which the
// look-back dispensing logic in scatter_pass depends on implicitly through
// rs_radix_size remaining a compile-time constant multiple of the workgroup
// width.
var validSubgroupSizes = map[uint32]bool{
	1: true, 8: true, 16: true, 32: true, 64: true, 128: true,
}

// shaderSource builds the complete WGSL module for a given subgroup width:
// a prelude of const declarations derived from the package's sizing
// constants, followed by radixSortWGSL with its {..._wg_size} tokens
// substituted. There is no pipeline-overridable-constant support to lean on
// here, so specialization happens by textual substitution before the source
// ever reaches the shading compiler.
func shaderSource(subgroupSize uint32) (string, error) {
	if !validSubgroupSizes[subgroupSize] || RadixSize%subgroupSize != 0 {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedSubgroupSize, subgroupSize)
	}

	// The prefix scan's workgroup-shared sweep uses up to three levels of
	// subgroup reduction to fold PrefixWG (128) per-lane totals down to one:
	// sweep_0 holds one entry per real subgroup, sweep_1 one per group of
	// subgroups, sweep_2 one per group of those - sized the same way
	// src/lib.rs derives them, s_{k+1} = s_k / W.
	sweep0 := RadixSize / subgroupSize
	sweep1 := sweep0 / subgroupSize
	sweep2 := sweep1 / subgroupSize
	memDwords := RadixSize + ScatterBlockRows*ScatterWG

	var prelude strings.Builder
	prelude.WriteString("enable subgroups;\n")
	fmt.Fprintf(&prelude, "const rs_radix_log2: u32 = %du;\n", RadixLog2)
	fmt.Fprintf(&prelude, "const rs_radix_size: u32 = %du;\n", RadixSize)
	fmt.Fprintf(&prelude, "const rs_keyval_size: u32 = %du;\n", NumPasses)
	fmt.Fprintf(&prelude, "const rs_histogram_block_rows: u32 = %du;\n", HistoBlockRows)
	fmt.Fprintf(&prelude, "const rs_scatter_block_rows: u32 = %du;\n", ScatterBlockRows)
	fmt.Fprintf(&prelude, "const rs_mem_dwords: u32 = %du;\n", memDwords)
	fmt.Fprintf(&prelude, "const histogram_wg_size: u32 = %du;\n", HistoWG)
	fmt.Fprintf(&prelude, "const histogram_sg_size: u32 = %du;\n", subgroupSize)
	fmt.Fprintf(&prelude, "const rs_mem_sweep_0_offset: u32 = %du;\n", 0)
	fmt.Fprintf(&prelude, "const rs_mem_sweep_1_offset: u32 = %du;\n", sweep0)
	fmt.Fprintf(&prelude, "const rs_mem_sweep_2_offset: u32 = %du;\n", sweep0+sweep1)

	src := radixSortWGSL
	src = strings.ReplaceAll(src, "{histogram_wg_size}", strconv.Itoa(HistoWG))
	src = strings.ReplaceAll(src, "{prefix_wg_size}", strconv.Itoa(PrefixWG))
	src = strings.ReplaceAll(src, "{scatter_wg_size}", strconv.Itoa(ScatterWG))

	return prelude.String() + src, nil
}
