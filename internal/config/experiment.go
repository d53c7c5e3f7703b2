package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ExperimentConfig describes a Mininet-style topology and sweep for the
// `experiment` subcommand: one attacker host, one victim host, a category
// sweep, and a per-category run duration.
type ExperimentConfig struct {
	Topology   TopologyConfig `koanf:"topology"`
	Categories []int          `koanf:"categories"`
	RunFor     time.Duration  `koanf:"run_for"`
	OutDir     string         `koanf:"out_dir"`
}

// TopologyConfig names the two endpoints and the switch datapath under test.
type TopologyConfig struct {
	AttackerIP string `koanf:"attacker_ip"`
	ServerIP   string `koanf:"server_ip"`
	Interface  string `koanf:"interface"`
	DPID       string `koanf:"dpid"`
}

// DefaultExperimentConfig mirrors a minimal two-host Mininet topology.
func DefaultExperimentConfig() *ExperimentConfig {
	return &ExperimentConfig{
		Topology: TopologyConfig{
			AttackerIP: "10.0.0.1",
			ServerIP:   "10.0.0.2",
			Interface:  "eth0",
			DPID:       "1",
		},
		Categories: []int{1, 2, 3, 4},
		RunFor:     30 * time.Second,
		OutDir:     "results",
	}
}

const experimentEnvPrefix = "SDNPROBE_EXPERIMENT_"

// LoadExperiment reads an experiment topology from a YAML file at path,
// overlaid with SDNPROBE_EXPERIMENT_-prefixed environment overrides, merged
// on top of DefaultExperimentConfig.
func LoadExperiment(path string) (*ExperimentConfig, error) {
	k := koanf.New(".")

	defaults := DefaultExperimentConfig()
	defaultMap := map[string]any{
		"topology.attacker_ip": defaults.Topology.AttackerIP,
		"topology.server_ip":   defaults.Topology.ServerIP,
		"topology.interface":   defaults.Topology.Interface,
		"topology.dpid":        defaults.Topology.DPID,
		"categories":           defaults.Categories,
		"run_for":              defaults.RunFor.String(),
		"out_dir":              defaults.OutDir,
	}
	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set experiment default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load experiment config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(experimentEnvPrefix, ".", experimentEnvKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load experiment env overrides: %w", err)
	}

	cfg := &ExperimentConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal experiment config: %w", err)
	}

	if err := ValidateExperiment(cfg); err != nil {
		return nil, fmt.Errorf("validate experiment config from %s: %w", path, err)
	}

	return cfg, nil
}

func experimentEnvKeyMapper(s string) string {
	s = strings.TrimPrefix(s, experimentEnvPrefix)
	s = strings.ToLower(s)
	if rest, ok := strings.CutPrefix(s, "topology_"); ok {
		return "topology." + rest
	}
	return s
}

var (
	ErrEmptyAttackerIP    = errors.New("topology.attacker_ip must not be empty")
	ErrEmptyServerIP      = errors.New("topology.server_ip must not be empty")
	ErrNoCategories       = errors.New("categories must list at least one attack category")
	ErrCategoryOutOfRange = errors.New("categories must be in [1,4]")
)

// ValidateExperiment checks the loaded topology/sweep for logical errors.
func ValidateExperiment(cfg *ExperimentConfig) error {
	if cfg.Topology.AttackerIP == "" {
		return ErrEmptyAttackerIP
	}
	if cfg.Topology.ServerIP == "" {
		return ErrEmptyServerIP
	}
	if len(cfg.Categories) == 0 {
		return ErrNoCategories
	}
	for _, c := range cfg.Categories {
		if c < 1 || c > 4 {
			return fmt.Errorf("category %d: %w", c, ErrCategoryOutOfRange)
		}
	}
	return nil
}
