package detectors

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/scanguard/scanguard/internal/types"
)

// findSignatures scans line-by-line and emits one finding per line that
// matches any of the given regexes. Severity is the fixed constant for kind.
func findSignatures(path string, data []byte, res []*regexp.Regexp, kind types.FindingKind, desc string) []types.Finding {
	var out []types.Finding
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		t := sc.Text()
		for _, re := range res {
			if re.MatchString(t) {
				out = append(out, types.Finding{
					Kind:        kind,
					Severity:    types.SeverityFor(kind),
					Path:        path,
					Line:        line,
					Description: desc,
				})
				break
			}
		}
	}
	return out
}

// findKeywords emits one finding per line containing any of the given
// keywords, compared case-insensitively.
func findKeywords(path string, data []byte, keywords []string, kind types.FindingKind, desc string) []types.Finding {
	var out []types.Finding
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		t := strings.ToLower(sc.Text())
		for _, kw := range keywords {
			if strings.Contains(t, kw) {
				out = append(out, types.Finding{
					Kind:        kind,
					Severity:    types.SeverityFor(kind),
					Path:        path,
					Line:        line,
					Description: desc,
				})
				break
			}
		}
	}
	return out
}
