package detectors

import "github.com/scanguard/scanguard/internal/types"

// Vocabulary describing replacement or modification of the scanner itself.
// Substring matching is deliberately broad: a false positive on code that
// merely discusses security tooling is accepted in exchange for catching
// attempts to subvert the scanner, which outrank every other finding class.
var tamperingKeywords = []string{
	"model_replacement",
	"security_scanner",
	"scanner_replacement",
	"disable_security",
}

func ConfigTampering(path string, data []byte) []types.Finding {
	return findKeywords(path, data, tamperingKeywords, types.KindConfigTampering,
		"attempt to modify the security scanning configuration")
}
