package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scanguard/scanguard/internal/types"
)

// ScannerConfig is the on-disk shape of a scanner identity.
type ScannerConfig struct {
	Name             string  `yaml:"name"`
	DetectionRate    float64 `yaml:"detection_rate"`
	PatchGeneration  bool    `yaml:"patch_generation"`
	ZeroDayDetection bool    `yaml:"zero_day_detection"`
}

// Identity converts the config shape to the core identity value.
func (sc ScannerConfig) Identity() types.ScannerIdentity {
	return types.ScannerIdentity{
		Name:             sc.Name,
		DetectionRate:    sc.DetectionRate,
		PatchGeneration:  sc.PatchGeneration,
		ZeroDayDetection: sc.ZeroDayDetection,
	}
}

// ProbeConfig configures the health-check collaborator.
type ProbeConfig struct {
	// Endpoints maps scanner names to health-check URLs.
	Endpoints map[string]string `yaml:"endpoints"`
	Timeout   *string           `yaml:"timeout"`
	Interval  *string           `yaml:"interval"`
}

// ScanFileConfig mirrors the scan CLI flags.
type ScanFileConfig struct {
	Include  *string `yaml:"include"`
	Exclude  *string `yaml:"exclude"`
	MaxBytes *int64  `yaml:"max_bytes"`
	Threads  *int    `yaml:"threads"`
	NoCache  *bool   `yaml:"no_cache"`
}

// FileConfig is the on-disk YAML configuration shape for scanguard.
// Optional fields are pointers so absence is distinguishable from zero.
type FileConfig struct {
	Primary           *ScannerConfig  `yaml:"primary"`
	Backup            *ScannerConfig  `yaml:"backup"`
	FailoverThreshold *int            `yaml:"failover_threshold"`
	PatchGeneration   *bool           `yaml:"patch_generation"`
	AutoRemediation   *bool           `yaml:"auto_remediation"`
	NoColor           *bool           `yaml:"no_color"`
	Probe             *ProbeConfig    `yaml:"probe"`
	Scan              *ScanFileConfig `yaml:"scan"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".scanguard.yml", ".scanguard.yaml", "scanguard.yml", "scanguard.yaml"} {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "scanguard", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Defaults used when the config file omits a value.
const (
	DefaultFailoverThreshold = 3
	DefaultProbeInterval     = 60 * time.Second
)

// GetPrimary returns the configured primary, defaulting to securereview-7
// with its published capabilities.
func (fc FileConfig) GetPrimary() types.ScannerIdentity {
	if fc.Primary == nil {
		return types.ScannerIdentity{
			Name:             "securereview-7",
			DetectionRate:    0.97,
			PatchGeneration:  true,
			ZeroDayDetection: true,
		}
	}
	return fc.Primary.Identity()
}

// GetBackup returns the configured backup identity, or nil when none is set.
func (fc FileConfig) GetBackup() *types.ScannerIdentity {
	if fc.Backup == nil {
		return nil
	}
	id := fc.Backup.Identity()
	return &id
}

func (fc FileConfig) GetFailoverThreshold() int {
	if fc.FailoverThreshold == nil {
		return DefaultFailoverThreshold
	}
	return *fc.FailoverThreshold
}

// IsPatchGenerationEnabled defaults to true.
func (fc FileConfig) IsPatchGenerationEnabled() bool {
	if fc.PatchGeneration == nil {
		return true
	}
	return *fc.PatchGeneration
}

// IsAutoRemediationEnabled defaults to false.
func (fc FileConfig) IsAutoRemediationEnabled() bool {
	if fc.AutoRemediation == nil {
		return false
	}
	return *fc.AutoRemediation
}

// GetProbeEndpoints returns the endpoint map, possibly empty.
func (fc FileConfig) GetProbeEndpoints() map[string]string {
	if fc.Probe == nil {
		return map[string]string{}
	}
	return fc.Probe.Endpoints
}

// GetProbeTimeout returns the probe timeout, or zero for the prober default.
func (fc FileConfig) GetProbeTimeout() time.Duration {
	if fc.Probe == nil || fc.Probe.Timeout == nil {
		return 0
	}
	d, err := time.ParseDuration(*fc.Probe.Timeout)
	if err != nil {
		return 0
	}
	return d
}

func (fc FileConfig) GetProbeInterval() time.Duration {
	if fc.Probe == nil || fc.Probe.Interval == nil {
		return DefaultProbeInterval
	}
	d, err := time.ParseDuration(*fc.Probe.Interval)
	if err != nil {
		return DefaultProbeInterval
	}
	return d
}
