package scanguard

import (
	"os"
	"path/filepath"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/rhysd/go-github-selfupdate/selfupdate"

	"github.com/scanguard/scanguard/internal/config"
)

func selfUpdate() error {
	ver, err := semver.ParseTolerant(version)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	_, err = selfupdate.UpdateSelf(semver3.MustParse(ver.String()), "scanguard/scanguard")
	return err
}

// loadConfigs resolves the global and repo-local configs for the given root.
// Missing files yield zero values; precedence is CLI > local > global.
func loadConfigs(root string) (local, global config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	}
	if c, err := config.LoadLocal(root); err == nil {
		local = c
	}
	return local, global
}

func resolveRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return abs
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// mergeFileConfig overlays local over global so single-site lookups like
// GetPrimary see the highest-precedence value.
func mergeFileConfig(local, global config.FileConfig) config.FileConfig {
	merged := global
	if local.Primary != nil {
		merged.Primary = local.Primary
	}
	if local.Backup != nil {
		merged.Backup = local.Backup
	}
	if local.FailoverThreshold != nil {
		merged.FailoverThreshold = local.FailoverThreshold
	}
	if local.PatchGeneration != nil {
		merged.PatchGeneration = local.PatchGeneration
	}
	if local.AutoRemediation != nil {
		merged.AutoRemediation = local.AutoRemediation
	}
	if local.NoColor != nil {
		merged.NoColor = local.NoColor
	}
	if local.Probe != nil {
		merged.Probe = local.Probe
	}
	if local.Scan != nil {
		merged.Scan = local.Scan
	}
	return merged
}
