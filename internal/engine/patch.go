package engine

import (
	"fmt"

	"github.com/scanguard/scanguard/internal/types"
)

// recommendedAction maps each finding kind to its fixed remediation
// template. Unknown kinds fall back to a kind-specific generic action.
func recommendedAction(kind types.FindingKind) string {
	switch kind {
	case types.KindSQLInjection:
		return "Use parameterized queries instead of string concatenation"
	case types.KindXSS:
		return "Sanitize user input before rendering"
	case types.KindAuthBypass:
		return "Implement proper authentication checks"
	case types.KindSupplyChain:
		return "Update dependency to a pinned, verified version"
	case types.KindConfigTampering:
		return "Block modification to maintain scanner integrity"
	default:
		return fmt.Sprintf("Security patch for %s", kind)
	}
}

// SynthesizePatch produces a remediation descriptor for a finding, or nil
// when patch generation is disabled. Each synthesized patch is appended to
// the in-process history.
func (e *Engine) SynthesizePatch(f types.Finding) *types.PatchDescriptor {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.patchGeneration {
		return nil
	}
	patch := types.PatchDescriptor{
		Kind:   f.Kind,
		Action: recommendedAction(f.Kind),
		Path:   f.Path,
		Line:   f.Line,
	}
	e.appendHistory(f, patch)
	return &patch
}
