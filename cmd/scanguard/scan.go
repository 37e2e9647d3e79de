package scanguard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanguard/scanguard/internal/audit"
	"github.com/scanguard/scanguard/internal/config"
	"github.com/scanguard/scanguard/internal/detectors"
	"github.com/scanguard/scanguard/internal/engine"
	"github.com/scanguard/scanguard/internal/report"
	"github.com/scanguard/scanguard/internal/types"
	"github.com/scanguard/scanguard/internal/update"
)

var (
	flagPath         string
	flagStaged       bool
	flagInclude      string
	flagExclude      string
	flagMaxBytes     int64
	flagPatches      bool
	flagFailSeverity int
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan files for vulnerabilities",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan")
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "scan staged changes")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	cmd.Flags().BoolVar(&flagPatches, "patches", true, "synthesize remediation patches for findings")
	cmd.Flags().IntVar(&flagFailSeverity, "fail-severity", 0, "exit nonzero when any finding reaches this severity (0=off)")
}

func scanSection(fc config.FileConfig) config.ScanFileConfig {
	if fc.Scan == nil {
		return config.ScanFileConfig{}
	}
	return *fc.Scan
}

func runScan(cmd *cobra.Command, _ []string) error {
	root := resolveRoot(flagPath)
	local, global := loadConfigs(root)
	merged := mergeFileConfig(local, global)
	lscan, gscan := scanSection(local), scanSection(global)

	report.Configure(pickBool(flagNoColor, local.NoColor, global.NoColor))

	eng, err := engine.New(engine.Options{
		Identity:        merged.GetPrimary(),
		PatchGeneration: merged.IsPatchGenerationEnabled(),
		AutoRemediation: merged.IsAutoRemediationEnabled(),
	})
	if err != nil {
		return err
	}

	cfg := engine.ScanConfig{
		Root:            root,
		IncludeGlobs:    pickString(flagInclude, lscan.Include, gscan.Include),
		ExcludeGlobs:    pickString(flagExclude, lscan.Exclude, gscan.Exclude),
		MaxBytes:        pickInt64(flagMaxBytes, lscan.MaxBytes, gscan.MaxBytes),
		Threads:         pickInt(flagThreads, lscan.Threads, gscan.Threads),
		Staged:          flagStaged,
		NoCache:         pickBool(flagNoCache, lscan.NoCache, gscan.NoCache),
		DefaultExcludes: true,
	}

	if !flagJSON {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'scanguard update' to upgrade\n", latest)
			}
		}
		fmt.Fprintf(os.Stderr, "Scanning %s with %d detectors...\n", root, len(detectors.IDs()))
	}

	stats, err := eng.ScanTree(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	res := stats.Result

	var patches []types.PatchDescriptor
	if flagPatches {
		log := audit.NewLog(root)
		for _, f := range res.Findings {
			p := eng.SynthesizePatch(f)
			if p == nil {
				break
			}
			patches = append(patches, *p)
			if err := log.LogPatch(f, *p, eng.Identity()); err != nil {
				fmt.Fprintln(os.Stderr, "audit warning:", err)
			}
		}
	}

	if flagJSON {
		out := struct {
			types.ScanResult
			Patches      []types.PatchDescriptor `json:"patches,omitempty"`
			FilesScanned int                     `json:"files_scanned"`
		}{res, patches, stats.FilesScanned}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		report.PrintResult(os.Stdout, res, report.PrintOptions{
			NoColor:      flagNoColor,
			Duration:     stats.Duration,
			FilesScanned: stats.FilesScanned,
		})
		report.PrintPatches(os.Stdout, patches)
	}

	if report.ShouldFail(res, flagFailSeverity) {
		os.Exit(1)
	}
	return nil
}
