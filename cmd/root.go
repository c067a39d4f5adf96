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

package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/artn/hgfsd/internal/cfg"
)

var (
	cliViper, cfgViper *viper.Viper
	cfgFileObj, cliObj cfg.Config
	cfgFile            string
	bindErr            error
)

var rootCmd = &cobra.Command{
	Use:   "hgfsd [flags]",
	Short: "Host-side HGFS server: serves shared folders to a guest",
	Long: `hgfsd implements the host side of the Host-Guest File System
protocol: it resolves guest CP-Name paths against a table of configured
shared folders, maps protocol opcodes onto host filesystem calls, and
answers over a pluggable transport (only the in-process loopback
transport is built).`,
	RunE: runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "YAML config file (required to configure shares; see ShareConfig).")
	if cliViper, bindErr = cfg.BindFlags(rootCmd.PersistentFlags()); bindErr != nil {
		bindErr = fmt.Errorf("error while binding flags for cli-viper: %w", bindErr)
		return
	}
	cfgFlagset := flag.NewFlagSet("cfg-flagset", flag.ExitOnError)
	if cfgViper, bindErr = cfg.BindFlags(cfgFlagset); bindErr != nil {
		bindErr = fmt.Errorf("error while binding flags for config-viper: %w", bindErr)
		return
	}
}

func initConfig() {
	if bindErr = cliViper.Unmarshal(&cliObj, viper.DecodeHook(cfg.DecodeHook())); bindErr != nil {
		bindErr = fmt.Errorf("error while unmarshaling the cli flags: %w", bindErr)
		return
	}
	if cfgFile == "" {
		return
	}
	cfgViper.SetConfigFile(cfgFile)
	cfgViper.SetConfigType("yaml")
	if bindErr = cfgViper.ReadInConfig(); bindErr != nil {
		bindErr = fmt.Errorf("error while reading the config file: %w", bindErr)
		return
	}
	bindErr = cfgViper.Unmarshal(&cfgFileObj, viper.DecodeHook(cfg.DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})
	if bindErr != nil {
		bindErr = fmt.Errorf("error while unmarshaling the config-file params: %w", bindErr)
		return
	}
}

// resolvedConfig merges the flag-derived config over the file-derived
// one section by section: Transport, Session, Logging and Metrics are
// always taken from the flags, defaults included, so the file's values
// for those sections are not used. Shares only ever come from the file
// (cliObj.Shares is always empty — there's no flag for it).
func resolvedConfig() (*cfg.Config, error) {
	if bindErr != nil {
		return nil, bindErr
	}
	merged := cfgFileObj
	merged.Transport = cliObj.Transport
	merged.Session = cliObj.Session
	merged.Logging = cliObj.Logging
	merged.Metrics = cliObj.Metrics
	return &merged, nil
}
