package scanguard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanguard/scanguard/internal/audit"
	"github.com/scanguard/scanguard/internal/health"
	"github.com/scanguard/scanguard/internal/probe"
	"github.com/scanguard/scanguard/internal/report"
	"github.com/scanguard/scanguard/internal/types"
)

var (
	flagMonitorPath string
	flagOnce        bool
	flagInterval    time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch scanner health and fail over when the primary goes down",
		RunE:  runMonitor,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagMonitorPath, "path", "p", ".", "repo root for config and audit log")
	cmd.Flags().BoolVar(&flagOnce, "once", false, "run a single health check and exit")
	cmd.Flags().DurationVar(&flagInterval, "interval", 0, "override the probe interval (e.g. 30s)")
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	root := resolveRoot(flagMonitorPath)
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
	original := merged.GetPrimary()

	interval := merged.GetProbeInterval()
	if flagInterval > 0 {
		interval = flagInterval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagOnce {
		if err := monitorTick(ctx, mon, original); err != nil {
			return err
		}
		report.PrintStatus(os.Stdout, mon.Status())
		return nil
	}

	fmt.Fprintf(os.Stderr, "Monitoring %s every %s (failover after %d consecutive failures)\n",
		mon.Active().Name, interval, merged.GetFailoverThreshold())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := monitorTick(ctx, mon, original); err != nil {
			if errors.Is(err, health.ErrNoBackup) {
				fmt.Fprintln(os.Stderr, "CRITICAL: active scanner is down past the failover threshold and no backup is configured")
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// monitorTick runs one probe cycle: try to restore a failed-over primary,
// check the active scanner, and fail over once the threshold is reached.
func monitorTick(ctx context.Context, mon *health.Monitor, original types.ScannerIdentity) error {
	if mon.State() == health.StateFailedOver {
		restored, err := mon.AttemptRestore(ctx, original)
		if err != nil {
			return err
		}
		if restored {
			fmt.Fprintf(os.Stderr, "primary scanner %s restored\n", original.Name)
		}
	}

	ok, err := mon.Check(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	st := mon.Status()
	fmt.Fprintf(os.Stderr, "health check failed for %s (%d/%d)\n", st.Active.Name, st.Failures, st.Threshold)
	swapped, err := mon.FailoverIfNeeded()
	if err != nil {
		return err
	}
	if swapped {
		fmt.Fprintf(os.Stderr, "failover activated: %s -> %s\n", st.Active.Name, mon.Active().Name)
	}
	return nil
}
