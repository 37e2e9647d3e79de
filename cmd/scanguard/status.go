package scanguard

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanguard/scanguard/internal/audit"
	"github.com/scanguard/scanguard/internal/health"
	"github.com/scanguard/scanguard/internal/probe"
	"github.com/scanguard/scanguard/internal/report"
)

var flagStatusPath string

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe the active scanner once and print the monitor state",
		RunE:  runStatus,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagStatusPath, "path", "p", ".", "repo root for config and audit log")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	root := resolveRoot(flagStatusPath)
	local, global := loadConfigs(root)
	merged := mergeFileConfig(local, global)
	report.Configure(pickBool(flagNoColor, local.NoColor, global.NoColor))

	prober := probe.NewHTTPProber(merged.GetProbeEndpoints(), merged.GetProbeTimeout())
	mon, err := health.NewMonitor(health.Config{
		Primary:           merged.GetPrimary(),
		Backup:            merged.GetBackup(),
		FailoverThreshold: merged.GetFailoverThreshold(),
		Prober:            prober,
		Audit:             audit.NewLog(root),
	})
	if err != nil {
		return err
	}

	if _, err := mon.Check(context.Background()); err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(mon.Status())
	}
	report.PrintStatus(os.Stdout, mon.Status())
	return nil
}
