// Package config loads application settings from defaults, an optional
// config file, CAPACITY_* environment variables and command-line flags, in
// increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"capacity-planner/engine"
	apperrors "capacity-planner/errors"
	"capacity-planner/logging"
	"capacity-planner/models"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CAPACITY_LOG_LEVEL or
// CAPACITY_PLAN_HIRING_DURATION.
const EnvPrefix = "CAPACITY"

// Settings is the resolved application configuration.
type Settings struct {
	LogLevel    string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string        `mapstructure:"log_format" validate:"oneof=text json"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	PushURL     string        `mapstructure:"push_url" validate:"omitempty,url"`
	ListenAddr  string        `mapstructure:"listen_addr" validate:"required"`
	SyncURL     string        `mapstructure:"sync_url" validate:"omitempty,url"`
	SyncTimeout time.Duration `mapstructure:"sync_timeout" validate:"gt=0"`

	SourcerPolicy  string `mapstructure:"sourcer_policy"`
	Redistribution string `mapstructure:"redistribution"`

	// Plan holds the default simulation assumptions, clamped into range.
	Plan models.GlobalConfig `mapstructure:"plan"`
}

// Logging returns the logger configuration.
func (s Settings) Logging() logging.Config {
	return logging.Config{Level: s.LogLevel, Format: s.LogFormat}
}

// Engine builds a calculation engine with the configured policies.
func (s Settings) Engine() (*engine.Engine, error) {
	sourcing, err := engine.SourcerPolicyByName(s.SourcerPolicy)
	if err != nil {
		return nil, err
	}
	redistribution, err := engine.RedistributionByName(s.Redistribution)
	if err != nil {
		return nil, err
	}
	return engine.New(engine.WithSourcerPolicy(sourcing), engine.WithRedistribution(redistribution)), nil
}

// flagKeys maps command-line flag names to settings keys.
var flagKeys = map[string]string{
	"log-level":         "log_level",
	"log-format":        "log_format",
	"metrics-addr":      "metrics_addr",
	"push-url":          "push_url",
	"listen":            "listen_addr",
	"sync-url":          "sync_url",
	"sync-timeout":      "sync_timeout",
	"sourcer-policy":    "sourcer_policy",
	"redistribution":    "redistribution",
	"duration":          "plan.hiring_duration",
	"ramp-up":           "plan.ramp_up_weeks",
	"tp-capacity":       "plan.tp_capacity_per_week",
	"pools-per-sourcer": "plan.pools_per_sourcer",
}

// RegisterFlags defines the flags understood by BindFlags. Flag defaults are
// informational; unset flags never override file or environment values.
func RegisterFlags(flags *pflag.FlagSet) {
	def := models.DefaultConfig()
	sourcing, redistribution := engine.PolicyNames()
	flags.String("log-level", "info", "Log level: debug|info|warn|error")
	flags.String("log-format", "text", "Log format: text|json")
	flags.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	flags.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	flags.String("listen", ":8080", "HTTP API listen address")
	flags.String("sync-url", "", "External demand feed URL")
	flags.Duration("sync-timeout", 15*time.Second, "Demand feed request timeout")
	flags.String("sourcer-policy", sourcing[0], "Sourcer sizing: "+strings.Join(sourcing, "|"))
	flags.String("redistribution", redistribution[0], "Demand redistribution on duration change: "+strings.Join(redistribution, "|"))
	flags.Int("duration", def.HiringDuration, "Hiring window in weeks")
	flags.Int("ramp-up", def.RampUpWeeks, "Ramp-up weeks before hiring starts")
	flags.Float64("tp-capacity", def.TPCapacityPerWeek, "Hires per Talent Partner per week")
	flags.Float64("pools-per-sourcer", def.PoolsPerSourcer, "Pools one Sourcer covers concurrently")
}

// BindFlags binds every registered flag present in flags to v.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	def := models.DefaultConfig()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("push_url", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("sync_url", "")
	v.SetDefault("sync_timeout", 15*time.Second)
	v.SetDefault("sourcer_policy", engine.PoolConcurrency{}.Name())
	v.SetDefault("redistribution", engine.FixedTotal{}.Name())
	v.SetDefault("plan.hiring_duration", def.HiringDuration)
	v.SetDefault("plan.ramp_up_weeks", def.RampUpWeeks)
	v.SetDefault("plan.tp_capacity_per_week", def.TPCapacityPerWeek)
	v.SetDefault("plan.pools_per_sourcer", def.PoolsPerSourcer)
	v.SetDefault("plan.total_sourcers.value", def.TotalSourcers.Value)
	v.SetDefault("plan.total_sourcers.source", string(def.TotalSourcers.Source))
	v.SetDefault("plan.sourcer_capacity_per_week", def.SourcerCapacityPerWeek)
	v.SetDefault("plan.candidates_per_hire", def.CandidatesPerHire)
}

var validate = validator.New()

// Load resolves settings. path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("%w: read %s: %v", apperrors.ErrInvalidConfig, path, err)
		}
	}
	if flags != nil {
		if err := BindFlags(v, flags); err != nil {
			return Settings{}, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))
	s.Plan = s.Plan.Clamp()
	if err := validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}
	if _, err := s.Engine(); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	if s.Plan.TotalSourcers.Source != models.SourceAuto && s.Plan.TotalSourcers.Source != models.SourceManual {
		return Settings{}, fmt.Errorf("%w: %w: %q", apperrors.ErrInvalidConfig, apperrors.ErrInvalidSource, s.Plan.TotalSourcers.Source)
	}
	return s, nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored; with no paths it reads ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
