package engine

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scanguard/scanguard/internal/cache"
	"github.com/scanguard/scanguard/internal/detectors"
	"github.com/scanguard/scanguard/internal/git"
	"github.com/scanguard/scanguard/internal/ignore"
	"github.com/scanguard/scanguard/internal/types"
)

// ScanConfig controls tree scanning scope and performance.
type ScanConfig struct {
	Root            string
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	Threads         int
	Staged          bool
	NoCache         bool
	DefaultExcludes bool
}

// ScanStats pairs the aggregate result with timing and counts.
type ScanStats struct {
	Result       types.ScanResult
	FilesScanned int
	Duration     time.Duration
}

type fileUnit struct {
	path string
	data []byte
}

// ScanTree walks the configured sources, analyzes every eligible file, and
// returns one aggregate result. Findings are ordered by path, then detection
// order within the file, so output is deterministic regardless of worker
// scheduling.
func (e *Engine) ScanTree(ctx context.Context, cfg ScanConfig) (ScanStats, error) {
	var stats ScanStats
	started := time.Now()

	if cfg.Threads <= 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}

	var db cache.DB
	if !cfg.NoCache {
		db, _ = cache.Load(cfg.Root)
	} else {
		db.Entries = map[string]string{}
	}

	units, err := e.collect(ctx, cfg)
	if err != nil {
		return stats, err
	}

	var mu sync.Mutex
	perFile := make(map[string][]types.Finding, len(units))
	updated := map[string]string{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for _, u := range units {
		u := u
		h := cache.Hash(u.data)
		if !cfg.NoCache && db.Entries[u.path] == h {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fs := detectors.RunAll(u.path, u.data)
			mu.Lock()
			perFile[u.path] = fs
			updated[u.path] = h
			stats.FilesScanned++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	paths := make([]string, 0, len(perFile))
	for p := range perFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var findings []types.Finding
	for _, p := range paths {
		findings = append(findings, perFile[p]...)
	}

	stats.Result = e.compose(findings)
	stats.Duration = time.Since(started)

	if !cfg.NoCache && len(updated) > 0 {
		if db.Entries == nil {
			db.Entries = map[string]string{}
		}
		for k, v := range updated {
			db.Entries[k] = v
		}
		_ = cache.Save(cfg.Root, db)
	}
	return stats, nil
}

// collect gathers scan units from the staged index or the working tree.
func (e *Engine) collect(ctx context.Context, cfg ScanConfig) ([]fileUnit, error) {
	if cfg.Staged {
		paths, blobs, err := git.StagedFiles(cfg.Root)
		if err != nil {
			return nil, err
		}
		ign, _ := ignore.Load(filepath.Join(cfg.Root, ".scanguardignore"))
		var units []fileUnit
		for i, p := range paths {
			if !allowedByGlobs(p, cfg) || ign.Match(p) {
				continue
			}
			if cfg.MaxBytes > 0 && int64(len(blobs[i])) > cfg.MaxBytes {
				continue
			}
			units = append(units, fileUnit{path: p, data: blobs[i]})
		}
		return units, nil
	}

	ign, _ := ignore.Load(filepath.Join(cfg.Root, ".scanguardignore"))
	var units []fileUnit
	err := Walk(ctx, cfg, ign, func(p string, data []byte) {
		units = append(units, fileUnit{path: p, data: data})
	})
	return units, err
}
