package ignore

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Matcher holds the patterns from a .scanguardignore file. A nil/empty
// matcher matches nothing.
type Matcher struct {
	patterns []string
}

// Load reads an ignore file. A missing file yields an empty matcher.
func Load(p string) (Matcher, error) {
	var m Matcher
	f, err := os.Open(p)
	if err != nil {
		return m, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, line)
	}
	return m, sc.Err()
}

// Match reports whether rel (slash-separated, repo-relative) is ignored.
// Patterns ending in "/" match any path under that directory; other patterns
// match the full path or the base name, with shell-glob semantics.
func (m Matcher) Match(rel string) bool {
	rel = strings.ReplaceAll(rel, "\\", "/")
	base := filepath.Base(rel)
	for _, p := range m.patterns {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(rel, p) || strings.HasPrefix(rel, strings.TrimSuffix(p, "/")+"/") {
				return true
			}
			continue
		}
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		if ok, _ := path.Match(p, base); ok {
			return true
		}
	}
	return false
}
