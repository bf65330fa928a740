package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/srediag/mumble-link/link"
	"github.com/srediag/mumble-link/pkg/shm"
)

// Options holds the resolved demo settings.
//
// Precedence, highest first: flags, LINKDEMO_* environment variables, the
// config file, defaults.
type Options struct {
	Name        string `mapstructure:"name" validate:"required"`
	Description string `mapstructure:"description"`
	Identity    string `mapstructure:"identity"`
	Segment     string `mapstructure:"segment" validate:"required"`
	Backend     string `mapstructure:"backend" validate:"oneof=system heap"`
	FPS         int    `mapstructure:"fps" validate:"gt=0,lte=1000"`
	StatusEvery int    `mapstructure:"status-every" validate:"gt=0"`
	Window      uint32 `mapstructure:"window" validate:"gt=0"`
	LogLevel    int    `mapstructure:"log-level" validate:"gte=0,lte=5"`
	MetricsAddr string `mapstructure:"metrics-addr" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

func addFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("name", "Test", "application name shown by the host")
	flags.String("description", "test.", "application description")
	flags.String("identity", "", "player identity (prompted for when empty)")
	flags.String("segment", shm.DefaultName(), "shared memory object name")
	flags.String("backend", "system", "segment backend: system or heap")
	flags.Int("fps", 50, "frames per second")
	flags.Int("status-every", 200, "print the link status every N frames")
	flags.Uint32("window", 100, "frames between link state reevaluations")
	flags.Int("log-level", link.LevelWarn, "log level, 0 (trace) to 5 (off)")
	flags.String("metrics-addr", "", "serve /metrics, /live and /ready on this address")
}

func loadOptions(flags *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKDEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	if err := validate.Struct(&opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &opts, nil
}

func (o *Options) backend() shm.Backend {
	if o.Backend == "heap" {
		return shm.NewHeap()
	}
	return shm.System()
}

func (o *Options) linkConfig() *link.Config {
	conf := link.DefaultConfig()
	conf.SegmentName = o.Segment
	conf.Backend = o.backend()
	conf.SamplingWindow = o.Window
	return conf
}
