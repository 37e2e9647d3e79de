package scanguard

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanguard/scanguard/internal/audit"
	"github.com/scanguard/scanguard/internal/report"
)

var flagHistoryPath string

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit log of failovers and synthesized patches",
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagHistoryPath, "path", "p", ".", "repo root for the audit log")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	root := resolveRoot(flagHistoryPath)
	local, global := loadConfigs(root)
	report.Configure(pickBool(flagNoColor, local.NoColor, global.NoColor))

	recs, err := audit.NewLog(root).LoadHistory()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if flagJSON {
		if recs == nil {
			recs = []audit.Record{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	report.PrintHistory(os.Stdout, recs)
	return nil
}
