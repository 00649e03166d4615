package gpuradixsort

import "testing"

func TestDefaultSorterConfig(t *testing.T) {
	cfg := defaultSorterConfig()
	if cfg.label != "radix sort" {
		t.Errorf("default label = %q, want %q", cfg.label, "radix sort")
	}
	if cfg.debugAssertions {
		t.Errorf("default debugAssertions = true, want false")
	}
}

func TestWithLabel(t *testing.T) {
	cfg := defaultSorterConfig()
	WithLabel("custom label").apply(&cfg)
	if cfg.label != "custom label" {
		t.Errorf("label = %q, want %q", cfg.label, "custom label")
	}
}

func TestWithDebugAssertions(t *testing.T) {
	cfg := defaultSorterConfig()
	WithDebugAssertions(true).apply(&cfg)
	if !cfg.debugAssertions {
		t.Errorf("debugAssertions = false, want true after WithDebugAssertions(true)")
	}
}
