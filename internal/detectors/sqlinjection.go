package detectors

import (
	"regexp"

	"github.com/scanguard/scanguard/internal/types"
)

// Fixed signature set; concatenation into a SQL clause is the tell.
var reSQLInjection = []*regexp.Regexp{
	regexp.MustCompile(`(?i)SELECT\s+.+\s+FROM\s+.+\s+WHERE\s+.*=.*\+`),
	regexp.MustCompile(`(?i)INSERT\s+INTO\s+.+VALUES\s*.*\+`),
	regexp.MustCompile(`(?i)UPDATE\s+.+\s+SET\s+.+\s+WHERE\s+.*\+`),
}

func SQLInjection(path string, data []byte) []types.Finding {
	return findSignatures(path, data, reSQLInjection, types.KindSQLInjection,
		"SQL query assembled by string concatenation")
}
