// Package config layers the livechart settings: flags, LIVECHART_* environment
// variables, an optional YAML file and built-in defaults.
package config

import (
	"github.com/minor-industries/livechart/channels"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"strings"
	"time"
)

const EnvPrefix = "LIVECHART"

const (
	KeyServer           = "server"
	KeyListen           = "listen"
	KeyReconnect        = "reconnect"
	KeyReadLimit        = "read_limit"
	KeyDemo             = "demo"
	KeyDebug            = "debug"
	KeyChannels         = "channels"
	KeySimulateListen   = "simulate.listen"
	KeySimulateInterval = "simulate.interval"
)

const (
	DefaultServer           = "ws://localhost:60080/"
	DefaultListen           = "0.0.0.0:8000"
	DefaultReadLimit        = 1 << 20
	DefaultSimulateListen   = "localhost:60080"
	DefaultSimulateInterval = 100 * time.Millisecond
)

type Simulate struct {
	Listen   string
	Interval time.Duration
}

type Config struct {
	Server    string
	Listen    string
	Reconnect bool
	ReadLimit int64
	Demo      bool
	Debug     bool
	Channels  channels.Table
	Simulate  Simulate
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServer, DefaultServer)
	v.SetDefault(KeyListen, DefaultListen)
	v.SetDefault(KeyReconnect, false)
	v.SetDefault(KeyReadLimit, DefaultReadLimit)
	v.SetDefault(KeyDemo, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeySimulateListen, DefaultSimulateListen)
	v.SetDefault(KeySimulateInterval, DefaultSimulateInterval)
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "read config file")
	}
	return nil
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server:    v.GetString(KeyServer),
		Listen:    v.GetString(KeyListen),
		Reconnect: v.GetBool(KeyReconnect),
		ReadLimit: v.GetInt64(KeyReadLimit),
		Demo:      v.GetBool(KeyDemo),
		Debug:     v.GetBool(KeyDebug),
		Simulate: Simulate{
			Listen:   v.GetString(KeySimulateListen),
			Interval: v.GetDuration(KeySimulateInterval),
		},
	}

	if v.IsSet(KeyChannels) {
		table := channels.Table{}
		if err := v.UnmarshalKey(KeyChannels, &table); err != nil {
			return nil, errors.Wrap(err, "decode channels")
		}
		cfg.Channels = table
	} else {
		cfg.Channels = channels.Default()
	}

	if err := cfg.Channels.Validate(); err != nil {
		return nil, errors.Wrap(err, "channels")
	}

	if cfg.Server == "" {
		return nil, errors.New("server url is empty")
	}

	if cfg.ReadLimit <= 0 {
		return nil, errors.Errorf("read limit must be positive, got %d", cfg.ReadLimit)
	}

	if cfg.Simulate.Interval <= 0 {
		return nil, errors.Errorf("simulate interval must be positive, got %s", cfg.Simulate.Interval)
	}

	return cfg, nil
}
