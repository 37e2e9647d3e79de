package detectors

import (
	"regexp"

	"github.com/scanguard/scanguard/internal/types"
)

var reSupplyChain = []*regexp.Regexp{
	regexp.MustCompile(`(?i)curl\s[^|]*\|\s*(?:sudo\s+)?(?:sh|bash)\b`),
	regexp.MustCompile(`(?i)pip\s+install\s.*--index-url\s+http://`),
	regexp.MustCompile(`(?i)npm\s+install\s.*--registry\s+http://`),
}

func SupplyChain(path string, data []byte) []types.Finding {
	return findSignatures(path, data, reSupplyChain, types.KindSupplyChain,
		"dependency installed from an unverified source")
}
