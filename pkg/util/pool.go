package util

import "runtime"

// GetOptimalPoolSize returns the worker count used for plugin analysis and
// for each per-language parser pool.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Parsing is CGO-heavy, so 2x cores keeps the CPUs busy while goroutines sit
// in tree-sitter calls. The cap bounds the number of live parse trees (and
// therefore peak memory) when a large plugin tree is scanned.
//
// This MUST stay the single source for both pools: a worker that cannot get a
// parser blocks until another worker releases one.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when it is positive,
// GetOptimalPoolSize() otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
