package git

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// validateRoot normalizes a repository root and rejects obviously bad paths.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// StagedFiles returns the paths and blob contents of files staged in the
// index, using git plumbing. Deleted files are skipped.
func StagedFiles(root string) ([]string, [][]byte, error) {
	abs, err := validateRoot(root)
	if err != nil {
		return nil, nil, err
	}

	out, err := exec.Command("git", "-C", abs, "diff", "--cached", "--name-only", "--diff-filter=d", "-z").Output()
	if err != nil {
		return nil, nil, fmt.Errorf("git diff --cached failed: %w", err)
	}

	var paths []string
	var blobs [][]byte
	for _, p := range bytes.Split(out, []byte{0}) {
		name := string(p)
		if name == "" {
			continue
		}
		blob, err := exec.Command("git", "-C", abs, "show", ":"+name).Output()
		if err != nil {
			// racing index updates or filters; skip rather than abort
			continue
		}
		paths = append(paths, name)
		blobs = append(blobs, blob)
	}
	return paths, blobs, nil
}
