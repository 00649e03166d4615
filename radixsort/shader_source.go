package gpuradixsort

// radixSortWGSL is the device-side implementation of the five compute entry
// points. It is never compiled on its own: shaderSource prepends a prelude of
// specialization constants (derived from the detected subgroup width) and
// substitutes the {histogram_wg_size}/{prefix_wg_size}/{scatter_wg_size}
// tokens before the result is handed to the shading compiler.
//
// Bind group (must match bindGroupLayout in sorter.go):
//
//	binding 0: SorterState   (num_keys, padded_size, even_pass, odd_pass)
//	binding 1: internal      (histograms, then one partition descriptor per
//	           scatter block)
//	binding 2: keys_a
//	binding 3: keys_b
//	binding 4: payload_a
//	binding 5: payload_b
const radixSortWGSL = `
struct SorterState {
    num_keys: u32,
    padded_size: u32,
    even_pass: u32,
    odd_pass: u32,
};

@group(0) @binding(0) var<storage, read_write> state: SorterState;
@group(0) @binding(1) var<storage, read_write> internal_mem: array<atomic<u32>>;
@group(0) @binding(2) var<storage, read_write> keys_a: array<u32>;
@group(0) @binding(3) var<storage, read_write> keys_b: array<u32>;
@group(0) @binding(4) var<storage, read_write> payload_a: array<u32>;
@group(0) @binding(5) var<storage, read_write> payload_b: array<u32>;

// Partition descriptor: low 2 bits are status, remaining bits are the value.
const STATUS_INVALID: u32 = 0u;
const STATUS_AGGREGATE: u32 = 1u;
const STATUS_PREFIX: u32 = 2u;
const STATUS_MASK: u32 = 3u;
const VALUE_SHIFT: u32 = 2u;

fn histogram_offset(pass_index: u32) -> u32 {
    return pass_index * rs_radix_size;
}

fn partition_offset(block_index: u32) -> u32 {
    return rs_keyval_size * rs_radix_size + block_index * rs_radix_size;
}

@compute @workgroup_size({histogram_wg_size})
fn zero_histograms(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(local_invocation_index) lid: u32) {
    let block = gid.x / histogram_wg_size;
    if (block == 0u) {
        for (var p: u32 = 0u; p < rs_keyval_size; p = p + 1u) {
            atomicStore(&internal_mem[histogram_offset(p) + lid], 0u);
        }
    }
    let num_scatter_blocks = state.padded_size / (rs_scatter_block_rows * histogram_wg_size);
    if (block < num_scatter_blocks) {
        atomicStore(&internal_mem[partition_offset(block) + lid], STATUS_INVALID);
    }
}

@compute @workgroup_size({histogram_wg_size})
fn calculate_histogram(@builtin(workgroup_id) wid: vec3<u32>, @builtin(local_invocation_index) lid: u32) {
    let block_start = wid.x * rs_histogram_block_rows * histogram_wg_size;
    for (var row: u32 = 0u; row < rs_histogram_block_rows; row = row + 1u) {
        let idx = block_start + row * histogram_wg_size + lid;
        if (idx < state.num_keys) {
            let key = keys_a[idx];
            for (var p: u32 = 0u; p < rs_keyval_size; p = p + 1u) {
                let digit = (key >> (p * rs_radix_log2)) & (rs_radix_size - 1u);
                atomicAdd(&internal_mem[histogram_offset(p) + digit], 1u);
            }
        }
    }
}

var<workgroup> prefix_scratch: array<u32, rs_mem_dwords>;

// prefix_histogram turns each pass's 256 per-digit counts into exclusive
// prefix sums. Each of the {prefix_wg_size} lanes owns rs_radix_size /
// {prefix_wg_size} = 2 bins, scans them locally, then folds the per-lane
// totals across the workgroup with subgroupAdd/subgroupExclusiveAdd rather
// than a single lane walking all 256 bins serially. histogram_sg_size real
// subgroups are combined through rs_mem_sweep_0/1/2_offset, one sweep level
// per factor of histogram_sg_size still outstanding after the previous
// level - at most one extra level is needed for any supported subgroup
// width except 1, which has no hardware reduction to call.
@compute @workgroup_size({prefix_wg_size})
fn prefix_histogram(@builtin(workgroup_id) wid: vec3<u32>, @builtin(local_invocation_index) lid: u32, @builtin(subgroup_invocation_id) sg_id: u32) {
    let pass_index = wid.x;
    let base = histogram_offset(pass_index);
    let bins_per_lane = rs_radix_size / {prefix_wg_size}u;
    let bin0 = lid * bins_per_lane;

    var local_prefix: array<u32, 2>;
    var lane_total: u32 = 0u;
    for (var i: u32 = 0u; i < bins_per_lane; i = i + 1u) {
        local_prefix[i] = lane_total;
        lane_total = lane_total + atomicLoad(&internal_mem[base + bin0 + i]);
    }

    if (histogram_sg_size == 1u) {
        // No real subgroup to fold through: carry the per-lane totals
        // across the workgroup with a single-lane sequential scan instead.
        prefix_scratch[lid] = lane_total;
        workgroupBarrier();
        if (lid == 0u) {
            var carry: u32 = 0u;
            for (var i: u32 = 0u; i < {prefix_wg_size}u; i = i + 1u) {
                let t = prefix_scratch[i];
                prefix_scratch[i] = carry;
                carry = carry + t;
            }
        }
        workgroupBarrier();
        let lane_offset = prefix_scratch[lid];
        for (var i: u32 = 0u; i < bins_per_lane; i = i + 1u) {
            atomicStore(&internal_mem[base + bin0 + i], lane_offset + local_prefix[i]);
        }
        return;
    }

    let sg_prefix = subgroupExclusiveAdd(lane_total);
    let sg_total = subgroupAdd(lane_total);
    let subgroup_id = lid / histogram_sg_size;
    let num_subgroups = {prefix_wg_size}u / histogram_sg_size;

    if (sg_id == 0u) {
        prefix_scratch[rs_mem_sweep_0_offset + subgroup_id] = sg_total;
    }
    workgroupBarrier();

    var subgroup_offset: u32 = 0u;
    if (num_subgroups <= histogram_sg_size) {
        if (lid < num_subgroups) {
            let v = prefix_scratch[rs_mem_sweep_0_offset + lid];
            prefix_scratch[rs_mem_sweep_0_offset + lid] = subgroupExclusiveAdd(v);
        }
        workgroupBarrier();
        subgroup_offset = prefix_scratch[rs_mem_sweep_0_offset + subgroup_id];
    } else {
        // num_subgroups itself spans more than one subgroup (only possible
        // with this package's fixed 128-wide prefix workgroup when
        // histogram_sg_size is small, e.g. 8): fold once more through
        // rs_mem_sweep_1_offset before combining.
        let num_groups1 = (num_subgroups + histogram_sg_size - 1u) / histogram_sg_size;
        if (lid < num_subgroups) {
            let v = prefix_scratch[rs_mem_sweep_0_offset + lid];
            let p = subgroupExclusiveAdd(v);
            let t = subgroupAdd(v);
            prefix_scratch[rs_mem_sweep_0_offset + lid] = p;
            if (sg_id == 0u) {
                prefix_scratch[rs_mem_sweep_1_offset + subgroup_id] = t;
            }
        }
        workgroupBarrier();

        if (num_groups1 <= histogram_sg_size) {
            if (lid < num_groups1) {
                let v = prefix_scratch[rs_mem_sweep_1_offset + lid];
                prefix_scratch[rs_mem_sweep_1_offset + lid] = subgroupExclusiveAdd(v);
            }
            workgroupBarrier();
        } else {
            // num_groups1 still spans more than one subgroup: one further
            // fold through rs_mem_sweep_2_offset. Not reachable with any of
            // this package's supported subgroup widths, but kept so the
            // scan stays correct if that set is ever widened.
            let num_groups2 = (num_groups1 + histogram_sg_size - 1u) / histogram_sg_size;
            if (lid < num_groups1) {
                let v = prefix_scratch[rs_mem_sweep_1_offset + lid];
                let p = subgroupExclusiveAdd(v);
                let t = subgroupAdd(v);
                prefix_scratch[rs_mem_sweep_1_offset + lid] = p;
                let group2_id = lid / histogram_sg_size;
                if (sg_id == 0u) {
                    prefix_scratch[rs_mem_sweep_2_offset + group2_id] = t;
                }
            }
            workgroupBarrier();
            if (lid < num_groups2) {
                let v = prefix_scratch[rs_mem_sweep_2_offset + lid];
                prefix_scratch[rs_mem_sweep_2_offset + lid] = subgroupExclusiveAdd(v);
            }
            workgroupBarrier();
            let group1_id = subgroup_id / histogram_sg_size;
            let group2_id = group1_id / histogram_sg_size;
            prefix_scratch[rs_mem_sweep_1_offset + group1_id] = prefix_scratch[rs_mem_sweep_1_offset + group1_id] + prefix_scratch[rs_mem_sweep_2_offset + group2_id];
            workgroupBarrier();
        }

        let group1_id = subgroup_id / histogram_sg_size;
        subgroup_offset = prefix_scratch[rs_mem_sweep_0_offset + subgroup_id] + prefix_scratch[rs_mem_sweep_1_offset + group1_id];
    }

    let lane_offset = subgroup_offset + sg_prefix;
    for (var i: u32 = 0u; i < bins_per_lane; i = i + 1u) {
        atomicStore(&internal_mem[base + bin0 + i], lane_offset + local_prefix[i]);
    }
}

var<workgroup> scatter_keys: array<u32, rs_mem_dwords>;
var<workgroup> scatter_counts: array<atomic<u32>, rs_radix_size>;
var<workgroup> scatter_global_base: array<u32, rs_radix_size>;

fn histogram_base(pass_index: u32, digit: u32) -> u32 {
    return atomicLoad(&internal_mem[histogram_offset(pass_index) + digit]);
}

// scatter_pass implements one LSD pass shared by scatter_even/scatter_odd.
// is_even selects the ping-pong direction; pass_index selects the byte and
// histogram to use.
fn scatter_pass(wid: vec3<u32>, lid: u32, pass_index: u32, is_even: bool) {
    let block_index = wid.x;
    let block_start = block_index * rs_scatter_block_rows * histogram_wg_size;
    let shift = pass_index * rs_radix_log2;

    if (lid < rs_radix_size) {
        atomicStore(&scatter_counts[lid], 0u);
    }
    workgroupBarrier();

    for (var row: u32 = 0u; row < rs_scatter_block_rows; row = row + 1u) {
        let local = row * histogram_wg_size + lid;
        let idx = block_start + local;
        if (idx < state.num_keys) {
            var key: u32;
            if (is_even) {
                key = keys_a[idx];
            } else {
                key = keys_b[idx];
            }
            scatter_keys[local] = key;
            let digit = (key >> shift) & (rs_radix_size - 1u);
            atomicAdd(&scatter_counts[digit], 1u);
        }
    }
    workgroupBarrier();

    // Publish this block's per-digit aggregate as a look-back partition
    // descriptor, then resolve a global exclusive offset per digit by
    // polling predecessor blocks (decoupled look-back).
    if (lid < rs_radix_size) {
        let digit = lid;
        let aggregate = atomicLoad(&scatter_counts[digit]);

        if (block_index == 0u) {
            atomicStore(&internal_mem[partition_offset(block_index) + digit], (aggregate << VALUE_SHIFT) | STATUS_PREFIX);
            scatter_global_base[digit] = histogram_base(pass_index, digit);
        } else {
            atomicStore(&internal_mem[partition_offset(block_index) + digit], (aggregate << VALUE_SHIFT) | STATUS_AGGREGATE);

            var exclusive: u32 = 0u;
            var look_back: i32 = i32(block_index) - 1;
            loop {
                if (look_back < 0) {
                    break;
                }
                var status: u32 = STATUS_INVALID;
                var value: u32 = 0u;
                loop {
                    let word = atomicLoad(&internal_mem[partition_offset(u32(look_back)) + digit]);
                    status = word & STATUS_MASK;
                    value = word >> VALUE_SHIFT;
                    if (status != STATUS_INVALID) {
                        break;
                    }
                }
                exclusive = exclusive + value;
                if (status == STATUS_PREFIX) {
                    break;
                }
                look_back = look_back - 1;
            }
            atomicStore(&internal_mem[partition_offset(block_index) + digit], ((exclusive + aggregate) << VALUE_SHIFT) | STATUS_PREFIX);
            scatter_global_base[digit] = exclusive + histogram_base(pass_index, digit);
        }
    }
    workgroupBarrier();

    // Turn the per-digit counts into local exclusive offsets the final loop
    // dispenses ranks from via atomicAdd (lanes racing for the same digit
    // within this block still need that, even though the aggregate is now
    // final).
    if (lid == 0u) {
        var running: u32 = 0u;
        for (var d: u32 = 0u; d < rs_radix_size; d = d + 1u) {
            let c = atomicLoad(&scatter_counts[d]);
            atomicStore(&scatter_counts[d], running);
            running = running + c;
        }
    }
    workgroupBarrier();

    for (var row: u32 = 0u; row < rs_scatter_block_rows; row = row + 1u) {
        let local = row * histogram_wg_size + lid;
        let idx = block_start + local;
        if (idx < state.num_keys) {
            let key = scatter_keys[local];
            let digit = (key >> shift) & (rs_radix_size - 1u);
            let local_rank = atomicAdd(&scatter_counts[digit], 1u);
            let dst = scatter_global_base[digit] + local_rank;
            if (is_even) {
                keys_b[dst] = key;
                payload_b[dst] = payload_a[idx];
            } else {
                keys_a[dst] = key;
                payload_a[dst] = payload_b[idx];
            }
        }
    }
}

// A sort dispatches scatter_even, scatter_odd, scatter_even, scatter_odd.
// Each entry point reads its own counter to pick the pass (even: 0, 2; odd:
// 1, 3) and sets the other entry point's counter for the next dispatch, so no
// dispatch writes a field its own workgroups read, and even_pass is back to 0
// when the sort ends.
@compute @workgroup_size({scatter_wg_size})
fn scatter_even(@builtin(workgroup_id) wid: vec3<u32>, @builtin(local_invocation_index) lid: u32) {
    let pass_index = state.even_pass * 2u;
    scatter_pass(wid, lid, pass_index, true);
    if (wid.x == 0u && lid == 0u) {
        state.odd_pass = state.even_pass;
    }
}

@compute @workgroup_size({scatter_wg_size})
fn scatter_odd(@builtin(workgroup_id) wid: vec3<u32>, @builtin(local_invocation_index) lid: u32) {
    let pass_index = state.odd_pass * 2u + 1u;
    scatter_pass(wid, lid, pass_index, false);
    if (wid.x == 0u && lid == 0u) {
        state.even_pass = 1u - state.odd_pass;
    }
}
`
