// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cfg binds hgfsd's configuration surface to command-line flags
// and an optional YAML file, the same viper+pflag+mapstructure idiom
// gcsfuse's generated cfg package uses, sized down to the flags this
// server actually has.
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved configuration for one hgfsd process.
type Config struct {
	Transport TransportConfig `yaml:"transport"`

	Session SessionConfig `yaml:"session"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	// Shares is only ever populated from a YAML config file (there is no
	// sane way to express a list of share definitions as flags); an
	// operator running without --config-file gets zero shares, which is a
	// valid (if useless) configuration rather than an error.
	Shares []ShareConfig `yaml:"shares"`
}

// ShareConfig is one administrator-configured shared folder, decoded
// straight into shares.Info by cmd's wiring.
type ShareConfig struct {
	Name string `yaml:"name"`

	RootDir ResolvedPath `yaml:"root-dir"`

	ReadOnly bool `yaml:"read-only"`

	CaseSensitive bool `yaml:"case-sensitive"`

	FollowSymlinks bool `yaml:"follow-symlinks"`
}

// TransportConfig selects and configures the channel the dispatcher's
// serve loop reads requests from.
type TransportConfig struct {
	// Kind names the transport. Only "loopback" (in-process, for tests and
	// demos) is built by cmd; any other kind is rejected at startup.
	Kind string `yaml:"kind"`

	// Addr is an endpoint string for a non-loopback transport. The
	// loopback transport ignores it.
	Addr string `yaml:"addr"`
}

// SessionConfig bounds the per-session resource tables (spec.md §3.8,
// §4.5, §4.6).
type SessionConfig struct {
	MaxFileNodesPerSession int `yaml:"max-file-nodes-per-session" mapstructure:"max-file-nodes-per-session"`

	MaxCachedOpenNodes int `yaml:"max-cached-open-nodes" mapstructure:"max-cached-open-nodes"`

	MaxSearchesPerSession int `yaml:"max-searches-per-session" mapstructure:"max-searches-per-session"`

	// AlwaysUseHostTime makes Getattr report the host's wall-clock time
	// for a file's timestamps instead of whatever the guest last set via
	// Setattr (spec.md §4.3 Open Question).
	AlwaysUseHostTime bool `yaml:"always-use-host-time" mapstructure:"always-use-host-time"`
}

// LoggingConfig configures internal/logger's default factory.
type LoggingConfig struct {
	FilePath ResolvedPath `yaml:"file-path" mapstructure:"file-path"`

	Format string `yaml:"format"`

	Severity LogSeverity `yaml:"severity"`
}

// MetricsConfig configures the Prometheus HTTP exposition server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	Addr string `yaml:"addr"`
}

// BindFlags registers every flag this config surface understands onto
// flagSet and binds each to its viper key. Call it twice, once for the
// persistent CLI flagset and once for an unparsed flagset used only to
// seed a second Viper for config-file unmarshaling — mirrors the
// teacher's own two-viper split in cmd/root.go.
func BindFlags(flagSet *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	flagSet.String("transport", "loopback", "Transport kind; only loopback is supported.")
	if err := v.BindPFlag("transport.kind", flagSet.Lookup("transport")); err != nil {
		return nil, err
	}

	flagSet.String("transport-addr", "", "Endpoint for a non-loopback transport; ignored by loopback.")
	if err := v.BindPFlag("transport.addr", flagSet.Lookup("transport-addr")); err != nil {
		return nil, err
	}

	flagSet.Int("max-file-nodes-per-session", 256, "Upper bound on live file handles per guest session.")
	if err := v.BindPFlag("session.max-file-nodes-per-session", flagSet.Lookup("max-file-nodes-per-session")); err != nil {
		return nil, err
	}

	flagSet.Int("max-cached-open-nodes", 32, "Upper bound on host file descriptors kept open at once per session.")
	if err := v.BindPFlag("session.max-cached-open-nodes", flagSet.Lookup("max-cached-open-nodes")); err != nil {
		return nil, err
	}

	flagSet.Int("max-searches-per-session", 32, "Upper bound on concurrent open SearchOpen handles per session.")
	if err := v.BindPFlag("session.max-searches-per-session", flagSet.Lookup("max-searches-per-session")); err != nil {
		return nil, err
	}

	flagSet.Bool("always-use-host-time", false, "Report the host's current time for file timestamps instead of guest-set values.")
	if err := v.BindPFlag("session.always-use-host-time", flagSet.Lookup("always-use-host-time")); err != nil {
		return nil, err
	}

	flagSet.String("log-file", "", "File for logs; empty logs to syslog.")
	if err := v.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return nil, err
	}

	flagSet.String("log-format", "text", "Log line format: text or json.")
	if err := v.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return nil, err
	}

	flagSet.String("log-severity", "info", "Logging severity: trace, debug, info, warning, error, or off.")
	if err := v.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return nil, err
	}

	flagSet.Bool("metrics", false, "Serve Prometheus metrics over HTTP.")
	if err := v.BindPFlag("metrics.enabled", flagSet.Lookup("metrics")); err != nil {
		return nil, err
	}

	flagSet.String("metrics-addr", ":9100", "Address to serve /metrics on when --metrics is set.")
	if err := v.BindPFlag("metrics.addr", flagSet.Lookup("metrics-addr")); err != nil {
		return nil, err
	}

	return v, nil
}
