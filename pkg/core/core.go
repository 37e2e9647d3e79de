package core

import (
	"context"

	"github.com/scanguard/scanguard/internal/engine"
	"github.com/scanguard/scanguard/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Config = engine.ScanConfig
type Finding = types.Finding
type Result = types.ScanResult
type Identity = types.ScannerIdentity

// Scan is the stable entrypoint for other programs. It runs the full
// detector battery over the configured tree with patch generation on.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	eng, err := engine.New(engine.Options{
		Identity:        types.ScannerIdentity{Name: "securereview-7", DetectionRate: 0.97, PatchGeneration: true, ZeroDayDetection: true},
		PatchGeneration: true,
	})
	if err != nil {
		return Result{}, err
	}
	stats, err := eng.ScanTree(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	return stats.Result, nil
}

// Analyze runs the detector battery over one in-memory source unit.
func Analyze(source, path string) Result {
	eng, _ := engine.New(engine.Options{
		Identity:        types.ScannerIdentity{Name: "securereview-7", DetectionRate: 0.97, PatchGeneration: true, ZeroDayDetection: true},
		PatchGeneration: true,
	})
	return eng.Analyze(source, engine.ScanContext{Path: path})
}
