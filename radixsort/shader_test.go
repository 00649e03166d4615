package gpuradixsort

import (
	"strings"
	"testing"
)

func TestShaderSourceRejectsUnsupportedSubgroupSize(t *testing.T) {
	for _, size := range []uint32{0, 2, 3, 6, 256} {
		if _, err := shaderSource(size); err == nil {
			t.Errorf("shaderSource(%d) = nil error, want ErrUnsupportedSubgroupSize", size)
		}
	}
}

func TestShaderSourceIsDeterministicForSameSubgroupSize(t *testing.T) {
	a, err := shaderSource(32)
	if err != nil {
		t.Fatalf("shaderSource(32): %v", err)
	}
	b, err := shaderSource(32)
	if err != nil {
		t.Fatalf("shaderSource(32): %v", err)
	}
	if a != b {
		t.Fatalf("shaderSource(32) produced different output across calls")
	}
}

func TestShaderSourceDiffersAcrossSubgroupSizes(t *testing.T) {
	a, err := shaderSource(32)
	if err != nil {
		t.Fatalf("shaderSource(32): %v", err)
	}
	b, err := shaderSource(64)
	if err != nil {
		t.Fatalf("shaderSource(64): %v", err)
	}
	if a == b {
		t.Fatalf("shaderSource(32) and shaderSource(64) produced identical output")
	}
}

func TestShaderSourceHasNoUnsubstitutedTokens(t *testing.T) {
	src, err := shaderSource(32)
	if err != nil {
		t.Fatalf("shaderSource(32): %v", err)
	}
	for _, token := range []string{"{histogram_wg_size}", "{prefix_wg_size}", "{scatter_wg_size}"} {
		if strings.Contains(src, token) {
			t.Errorf("shaderSource output still contains unsubstituted token %q", token)
		}
	}
}

func TestShaderSourceDeclaresAllFiveEntryPoints(t *testing.T) {
	src, err := shaderSource(32)
	if err != nil {
		t.Fatalf("shaderSource(32): %v", err)
	}
	for _, fn := range []string{"zero_histograms", "calculate_histogram", "prefix_histogram", "scatter_even", "scatter_odd"} {
		if !strings.Contains(src, "fn "+fn) {
			t.Errorf("shader source missing entry point %q", fn)
		}
	}
}
