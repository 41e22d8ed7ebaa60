package modelc

import "os"

// DetectGPU reports whether a CUDA device appears present on this host. It
// is a cheap, dependency-free presence check (the teacher never wired a
// real GPU/CUDA library, and nothing in the example pack offers one either
// — see DESIGN.md); it is good enough to drive the manifest's
// gpu_required/cpu_fallback_allowed startup policy in §4.4.1. VAS_FORCE_GPU
// lets tests and operators override it without real hardware.
func DetectGPU() bool {
	if v := os.Getenv("VAS_FORCE_GPU"); v != "" {
		return v == "true"
	}
	if _, err := os.Stat("/dev/nvidia0"); err == nil {
		return true
	}
	if _, err := os.Stat("/usr/bin/nvidia-smi"); err == nil {
		return true
	}
	return false
}
