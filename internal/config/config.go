package config

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/viper"
	"github.td.teradata.com/sandbox/kilo/internal/log"
	"gopkg.in/yaml.v2"
)

const (
	defReadTimeout   = 1 // deciseconds
	defProbeDistance = 999
	defReportLimit   = 32
	defRowMarker     = "~"
	defLogLevel      = "INFO"
	defLogMaxSize    = 10 // megabytes
	defLogMaxBackups = 3
	defLogMaxAge     = 7 // days

	minReportLimit = 8

	EnvVarPrefix = "KILO"
)

var replacer = strings.NewReplacer(".", "_")

type Config struct {
	Terminal *Terminal `mapstructure:"terminal" yaml:"terminal"`
	Editor   *Editor   `mapstructure:"editor" yaml:"editor"`
	Log      *Log      `mapstructure:"log" yaml:"log"`
}

type Terminal struct {
	ReadTimeout   int `mapstructure:"read_timeout" yaml:"read_timeout"`
	ProbeDistance int `mapstructure:"probe_distance" yaml:"probe_distance"`
	ReportLimit   int `mapstructure:"report_limit" yaml:"report_limit"`
}

type Editor struct {
	RowMarker string `mapstructure:"row_marker" yaml:"row_marker"`
}

type Log struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Terminal: &Terminal{
			ReadTimeout:   defReadTimeout,
			ProbeDistance: defProbeDistance,
			ReportLimit:   defReportLimit,
		},
		Editor: &Editor{
			RowMarker: defRowMarker,
		},
		Log: &Log{
			Level:      defLogLevel,
			MaxSize:    defLogMaxSize,
			MaxBackups: defLogMaxBackups,
			MaxAge:     defLogMaxAge,
			Compress:   true,
		},
	}
}

// Load builds the configuration from the defaults, the optional YAML file cfgFile and finally
// KILO_ prefixed environment variables, then validates it.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	cfg := DefaultConfig()

	// set default values in viper.
	// Viper needs to know if a key exists in order to override it.
	// https://github.com/spf13/viper/issues/188
	if b, err := yaml.Marshal(cfg); err != nil {
		return nil, err
	} else if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		fi, err := os.Stat(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("config file %s is a directory", cfgFile)
		}
		v.SetConfigFile(cfgFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
		}
	}

	// Use environment variables as final override
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvVarPrefix)
	v.SetEnvKeyReplacer(replacer)

	// Preload environment bindings so they are processed on load
	if err := bindVars(v, reflect.TypeOf(*cfg), ""); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindVars(v *viper.Viper, t reflect.Type, prefix string) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		tag = prefix + tag

		switch {
		case field.Type.Kind() == reflect.Struct:
			if err := bindVars(v, field.Type, tag+"."); err != nil {
				return err
			}
		case field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct:
			if err := bindVars(v, field.Type.Elem(), tag+"."); err != nil {
				return err
			}
		default:
			if err := v.BindEnv(tag); err != nil {
				return fmt.Errorf("unable to bind environment variable for %s: %w", tag, err)
			}
		}
	}
	return nil
}

// Validate rejects values the terminal core cannot work with.
func (c *Config) Validate() error {
	// a zero timeout makes every raw read return at once
	if c.Terminal.ReadTimeout < 1 || c.Terminal.ReadTimeout > 255 {
		return fmt.Errorf("terminal.read_timeout must be between 1 and 255 deciseconds, got %d", c.Terminal.ReadTimeout)
	}
	if c.Terminal.ProbeDistance <= 0 {
		return fmt.Errorf("terminal.probe_distance must be positive, got %d", c.Terminal.ProbeDistance)
	}
	if c.Terminal.ReportLimit < minReportLimit {
		return fmt.Errorf("terminal.report_limit must be at least %d, got %d", minReportLimit, c.Terminal.ReportLimit)
	}
	if runewidth.StringWidth(c.Editor.RowMarker) != 1 {
		return fmt.Errorf("editor.row_marker must occupy exactly one cell, got %q", c.Editor.RowMarker)
	}
	var level log.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Configurator returns the logger configuration described by the log section.
func (l *Log) Configurator() *log.LoggerConfigurator {
	return log.NewLogConfigurator(l.Level, l.File, log.Rotation{
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAge,
		Compress:   l.Compress,
	})
}
