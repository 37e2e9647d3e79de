package scanguard

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagConfigPath string

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE:  runConfig,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagConfigPath, "path", "p", ".", "repo root for the local config")
}

// resolvedConfig is the fully-defaulted view printed by the config command.
type resolvedConfig struct {
	Primary           resolvedScanner   `yaml:"primary"`
	Backup            *resolvedScanner  `yaml:"backup,omitempty"`
	FailoverThreshold int               `yaml:"failover_threshold"`
	PatchGeneration   bool              `yaml:"patch_generation"`
	AutoRemediation   bool              `yaml:"auto_remediation"`
	ProbeEndpoints    map[string]string `yaml:"probe_endpoints,omitempty"`
	ProbeTimeout      string            `yaml:"probe_timeout,omitempty"`
	ProbeInterval     string            `yaml:"probe_interval"`
}

type resolvedScanner struct {
	Name             string  `yaml:"name"`
	DetectionRate    float64 `yaml:"detection_rate"`
	PatchGeneration  bool    `yaml:"patch_generation"`
	ZeroDayDetection bool    `yaml:"zero_day_detection"`
}

func runConfig(cmd *cobra.Command, _ []string) error {
	root := resolveRoot(flagConfigPath)
	local, global := loadConfigs(root)
	merged := mergeFileConfig(local, global)

	primary := merged.GetPrimary()
	out := resolvedConfig{
		Primary: resolvedScanner{
			Name:             primary.Name,
			DetectionRate:    primary.DetectionRate,
			PatchGeneration:  primary.PatchGeneration,
			ZeroDayDetection: primary.ZeroDayDetection,
		},
		FailoverThreshold: merged.GetFailoverThreshold(),
		PatchGeneration:   merged.IsPatchGenerationEnabled(),
		AutoRemediation:   merged.IsAutoRemediationEnabled(),
		ProbeEndpoints:    merged.GetProbeEndpoints(),
		ProbeInterval:     merged.GetProbeInterval().String(),
	}
	if b := merged.GetBackup(); b != nil {
		out.Backup = &resolvedScanner{
			Name:             b.Name,
			DetectionRate:    b.DetectionRate,
			PatchGeneration:  b.PatchGeneration,
			ZeroDayDetection: b.ZeroDayDetection,
		}
	}
	if t := merged.GetProbeTimeout(); t > time.Duration(0) {
		out.ProbeTimeout = t.String()
	}

	b, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(b))
	return nil
}
