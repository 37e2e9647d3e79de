package scanguard

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanguard/scanguard/internal/audit"
	"github.com/scanguard/scanguard/internal/engine"
	"github.com/scanguard/scanguard/internal/report"
	"github.com/scanguard/scanguard/internal/types"
)

var flagAlertsPath string

func init() {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Report degraded-capability alerts for the current configuration",
		RunE:  runAlerts,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagAlertsPath, "path", "p", ".", "repo root for config and audit log")
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	root := resolveRoot(flagAlertsPath)
	local, global := loadConfigs(root)
	merged := mergeFileConfig(local, global)
	report.Configure(pickBool(flagNoColor, local.NoColor, global.NoColor))

	primary := merged.GetPrimary()
	eng, err := engine.New(engine.Options{
		Identity:        primary,
		ExpectedPrimary: primary.Name,
		PatchGeneration: merged.IsPatchGenerationEnabled(),
		AutoRemediation: merged.IsAutoRemediationEnabled(),
	})
	if err != nil {
		return err
	}

	// A failover recorded in the audit log means the engine is no longer
	// running as the expected primary; reflect that in the alert stream.
	if active := activeFromHistory(root, primary, merged.GetBackup()); active != nil {
		eng.SetIdentity(*active)
	}

	alerts := eng.Alerts()
	if flagJSON {
		if alerts == nil {
			alerts = []types.Alert{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(alerts)
	}
	report.PrintAlerts(os.Stdout, alerts)
	return nil
}

// activeFromHistory replays the newest failover record, if any, to determine
// which scanner is currently active. Returns nil when the primary still is.
func activeFromHistory(root string, primary types.ScannerIdentity, backup *types.ScannerIdentity) *types.ScannerIdentity {
	recs, err := audit.NewLog(root).LoadHistory()
	if err != nil {
		return nil
	}
	for _, r := range recs {
		if r.Event != audit.EventFailover {
			continue
		}
		if r.ToScanner == primary.Name {
			return nil
		}
		if backup != nil && r.ToScanner == backup.Name {
			b := *backup
			return &b
		}
		return &types.ScannerIdentity{Name: r.ToScanner}
	}
	return nil
}
