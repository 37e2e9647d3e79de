package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanguard/scanguard/internal/types"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for p, content := range files {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return dir
}

func TestScanTreeFindsVulnerabilities(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"app/db.js":    `db.run("SELECT a FROM users WHERE id = " + req.query.id)`,
		"app/page.js":  `el.innerHTML = params.get("q")`,
		"README.md":    "installation notes\n",
		"clean/ok.go":  "package ok\n",
	})
	e := newEngine(t, true)

	stats, err := e.ScanTree(context.Background(), ScanConfig{Root: dir, NoCache: true, DefaultExcludes: true})
	require.NoError(t, err)
	require.Len(t, stats.Result.Findings, 2)
	// path-ordered: app/db.js before app/page.js
	assert.Equal(t, types.KindSQLInjection, stats.Result.Findings[0].Kind)
	assert.Equal(t, "app/db.js", stats.Result.Findings[0].Path)
	assert.Equal(t, types.KindXSS, stats.Result.Findings[1].Kind)
	assert.Equal(t, types.SeveritySQLInjection+types.SeverityXSS, stats.Result.RiskScore)
	assert.True(t, stats.Result.RequiresPatch)
	assert.Equal(t, 4, stats.FilesScanned)
}

func TestScanTreeDeterministic(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a.js", "b.js", "c.js", "d.js"} {
		files[name] = `document.write(q)`
	}
	dir := writeTree(t, files)
	e := newEngine(t, false)

	first, err := e.ScanTree(context.Background(), ScanConfig{Root: dir, NoCache: true, Threads: 4})
	require.NoError(t, err)
	second, err := e.ScanTree(context.Background(), ScanConfig{Root: dir, NoCache: true, Threads: 4})
	require.NoError(t, err)
	require.Equal(t, len(first.Result.Findings), len(second.Result.Findings))
	for i := range first.Result.Findings {
		assert.Equal(t, first.Result.Findings[i], second.Result.Findings[i])
	}
}

func TestScanTreeCacheSkipsUnchanged(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.js": `eval(q)`})
	e := newEngine(t, false)

	first, err := e.ScanTree(context.Background(), ScanConfig{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, first.FilesScanned)

	second, err := e.ScanTree(context.Background(), ScanConfig{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesScanned, "unchanged file must be skipped")
}

func TestScanTreeGlobsAndIgnore(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/a.js":         `eval(q)`,
		"src/b.py":         `eval(q)`,
		"skipme/c.js":      `eval(q)`,
		".scanguardignore": "skipme/\n",
	})
	e := newEngine(t, false)

	stats, err := e.ScanTree(context.Background(), ScanConfig{
		Root:         dir,
		IncludeGlobs: "**/*.js",
		NoCache:      true,
	})
	require.NoError(t, err)
	require.Len(t, stats.Result.Findings, 1)
	assert.Equal(t, "src/a.js", stats.Result.Findings[0].Path)
}

func TestScanTreeSkipsBinary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), []byte("eval(\x00)"), 0644))
	e := newEngine(t, false)

	stats, err := e.ScanTree(context.Background(), ScanConfig{Root: dir, NoCache: true})
	require.NoError(t, err)
	assert.Empty(t, stats.Result.Findings)
}
