package detectors

import "github.com/scanguard/scanguard/internal/types"

type Detector func(path string, data []byte) []types.Finding

// Signature detectors run first, the behavioral tampering detector last.
// The slice is fixed at build time: adding coverage means adding a detector
// here, never mutating the set at runtime. Order determines finding order.
var all = []Detector{
	SQLInjection,
	XSS,
	AuthBypass,
	SupplyChain,
	ConfigTampering,
}

// RunAll runs every detector in order and concatenates the findings.
func RunAll(path string, data []byte) []types.Finding {
	var out []types.Finding
	for _, d := range all {
		out = append(out, d(path, data)...)
	}
	return out
}

func IDs() []string {
	return []string{
		string(types.KindSQLInjection),
		string(types.KindXSS),
		string(types.KindAuthBypass),
		string(types.KindSupplyChain),
		string(types.KindConfigTampering),
	}
}
