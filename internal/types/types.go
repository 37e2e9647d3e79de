package types

import "time"

// FindingKind classifies a detected vulnerability.
type FindingKind string

const (
	KindSQLInjection    FindingKind = "sql-injection"
	KindXSS             FindingKind = "xss"
	KindAuthBypass      FindingKind = "auth-bypass"
	KindSupplyChain     FindingKind = "supply-chain"
	KindConfigTampering FindingKind = "config-tampering"
	KindGeneric         FindingKind = "generic"
)

// Fixed severity per finding kind, on a 0-10 scale. Severities are constants,
// not computed; adding coverage means adding a detector with its own constant.
const (
	SeveritySQLInjection    = 8
	SeverityXSS             = 7
	SeverityAuthBypass      = 9
	SeveritySupplyChain     = 8
	SeverityConfigTampering = 10
	SeverityGeneric         = 5
)

// SeverityFor returns the fixed severity for a finding kind.
func SeverityFor(kind FindingKind) int {
	switch kind {
	case KindSQLInjection:
		return SeveritySQLInjection
	case KindXSS:
		return SeverityXSS
	case KindAuthBypass:
		return SeverityAuthBypass
	case KindSupplyChain:
		return SeveritySupplyChain
	case KindConfigTampering:
		return SeverityConfigTampering
	default:
		return SeverityGeneric
	}
}

// Finding describes one potential vulnerability detected at a path and line.
// Line is 0 when the location is unknown.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	Severity    int         `json:"severity"`
	Path        string      `json:"path,omitempty"`
	Line        int         `json:"line,omitempty"`
	Description string      `json:"description"`
}

// ScannerIdentity names a security-analysis backend and its capabilities.
// Identities are values: swapped between active/backup, never mutated.
type ScannerIdentity struct {
	Name             string  `json:"name"`
	DetectionRate    float64 `json:"detection_rate"`
	PatchGeneration  bool    `json:"patch_generation"`
	ZeroDayDetection bool    `json:"zero_day_detection"`
}

// PatchDescriptor is a recommended remediation for a single finding.
type PatchDescriptor struct {
	Kind   FindingKind `json:"kind"`
	Action string      `json:"action"`
	Path   string      `json:"path,omitempty"`
	Line   int         `json:"line,omitempty"`
}

// ScanResult aggregates the findings of one analysis pass. Finding order is
// detection order and is deterministic for a given input.
type ScanResult struct {
	Findings         []Finding `json:"findings"`
	RiskScore        int       `json:"risk_score"`
	RequiresPatch    bool      `json:"requires_patch"`
	PatchesAvailable bool      `json:"patches_available"`
}

// Alert levels. Only HIGH and CRITICAL are emitted.
const (
	AlertHigh     = "HIGH"
	AlertCritical = "CRITICAL"
)

// Alert is one entry in the on-demand alert stream.
type Alert struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
