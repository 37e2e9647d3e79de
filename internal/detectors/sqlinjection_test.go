package detectors

import (
	"testing"

	"github.com/scanguard/scanguard/internal/types"
)

func TestSQLInjection(t *testing.T) {
	data := []byte(`query = "SELECT name FROM users WHERE id = " + userId`)
	fs := SQLInjection("app.js", data)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Kind != types.KindSQLInjection || fs[0].Severity != types.SeveritySQLInjection {
		t.Fatalf("unexpected finding: %+v", fs[0])
	}
	if fs[0].Line != 1 {
		t.Fatalf("expected line 1, got %d", fs[0].Line)
	}
}

func TestSQLInjectionVariants(t *testing.T) {
	cases := []string{
		`db.run("INSERT INTO logs VALUES ('" + msg + "')")`,
		`db.run("UPDATE users SET role='admin' WHERE name='" + name + "'")`,
	}
	for _, c := range cases {
		if fs := SQLInjection("x.py", []byte(c)); len(fs) == 0 {
			t.Fatalf("expected finding for %q", c)
		}
	}
}

func TestSQLInjectionCleanQuery(t *testing.T) {
	data := []byte(`rows, err := db.Query("SELECT name FROM users WHERE id = $1", id)`)
	if fs := SQLInjection("clean.go", data); len(fs) != 0 {
		t.Fatalf("parameterized query flagged: %+v", fs)
	}
}
