package detectors

import (
	"regexp"

	"github.com/scanguard/scanguard/internal/types"
)

var reAuthBypass = []*regexp.Regexp{
	regexp.MustCompile(`(?i)if\s*.*admin.*==\s*true`),
	regexp.MustCompile(`(?i)session\[.*admin.*\]\s*=\s*true`),
	regexp.MustCompile(`(?i)\bauthenticated\s*=\s*1\b`),
}

func AuthBypass(path string, data []byte) []types.Finding {
	return findSignatures(path, data, reAuthBypass, types.KindAuthBypass,
		"authentication decision made from a client-controlled value")
}
