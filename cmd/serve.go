// Copyright 2024 Google LLC
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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artn/hgfsd/internal/cfg"
	"github.com/artn/hgfsd/internal/dispatch"
	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/logger"
	"github.com/artn/hgfsd/internal/metrics"
	"github.com/artn/hgfsd/internal/session"
	"github.com/artn/hgfsd/internal/shares"
	"github.com/artn/hgfsd/internal/transport"
)

func runServe(c *cobra.Command, args []string) error {
	config, err := resolvedConfig()
	if err != nil {
		return fmt.Errorf("resolving config: %w", err)
	}

	if err := logger.InitLogFile(string(config.Logging.FilePath), config.Logging.Format, string(config.Logging.Severity)); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Close()

	reg, err := buildShareRegistry(config.Shares)
	if err != nil {
		return fmt.Errorf("building share registry: %w", err)
	}

	t, err := buildTransport(config.Transport)
	if err != nil {
		return fmt.Errorf("building transport: %w", err)
	}

	d := dispatch.New(reg, hostfs.NewOS(), config.Session.AlwaysUseHostTime)
	sessions := session.NewManager(session.Config{
		MaxFileNodes:       config.Session.MaxFileNodesPerSession,
		MaxCachedOpenNodes: config.Session.MaxCachedOpenNodes,
		MaxSearches:        config.Session.MaxSearchesPerSession,
	})

	ctx, cancel := context.WithCancel(context.Background())
	registerTerminatingSignalHandler(cancel, t)

	if config.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, config.Metrics.Addr); err != nil {
				logger.Errorf("metrics server exited: %v", err)
			}
		}()
	}

	logger.Infof("hgfsd serving %d share(s) over %q transport", len(config.Shares), config.Transport.Kind)
	return transport.Serve(t, d, sessions)
}

func buildShareRegistry(shareCfgs []cfg.ShareConfig) (*shares.Registry, error) {
	infos := make([]shares.Info, 0, len(shareCfgs))
	for _, s := range shareCfgs {
		infos = append(infos, shares.Info{
			Name:             s.Name,
			RootDir:          string(s.RootDir),
			ReadPermissions:  true,
			WritePermissions: !s.ReadOnly,
			CaseSensitive:    s.CaseSensitive,
			FollowSymlinks:   s.FollowSymlinks,
		})
	}
	return shares.Build(infos)
}

func buildTransport(tc cfg.TransportConfig) (transport.Transport, error) {
	switch tc.Kind {
	case "", "loopback":
		return transport.NewLoopback(), nil
	default:
		// TODO: wire a vsock-backed Transport once the guest-facing
		// backdoor channel implementation lands; the interface is ready.
		return nil, fmt.Errorf("unsupported transport kind %q", tc.Kind)
	}
}

// registerTerminatingSignalHandler cancels ctx and closes the transport
// on SIGINT/SIGTERM so the serve loop's Receive unblocks with ErrClosed
// instead of the process having to be killed out from under it.
func registerTerminatingSignalHandler(cancel context.CancelFunc, t transport.Transport) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signalChan
		logger.Infof("received %s, shutting down...", sig)
		cancel()
		if err := t.Close(); err != nil {
			logger.Errorf("error closing transport: %v", err)
		}
	}()
}
