package scanguard

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanguard/scanguard/internal/update"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update scanguard to the latest release",
		RunE:  runUpdate,
	}
	rootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	latest, newer, err := update.Check(version, false)
	if err == nil && latest != "" && !newer {
		fmt.Fprintf(os.Stderr, "already on the latest version (v%s)\n", version)
		return nil
	}
	if err := selfUpdate(); err != nil {
		return fmt.Errorf("self-update failed: %w", err)
	}
	fmt.Fprintln(os.Stderr, "updated to the latest release")
	return nil
}
