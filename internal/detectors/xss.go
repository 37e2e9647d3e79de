package detectors

import (
	"regexp"

	"github.com/scanguard/scanguard/internal/types"
)

var reXSS = []*regexp.Regexp{
	regexp.MustCompile(`innerHTML\s*=`),
	regexp.MustCompile(`document\.write\(`),
	regexp.MustCompile(`\beval\(`),
}

func XSS(path string, data []byte) []types.Finding {
	return findSignatures(path, data, reXSS, types.KindXSS,
		"unsanitized value rendered into the DOM")
}
