// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dialtonehq/callcheck/internal/checker"
	"github.com/dialtonehq/callcheck/internal/config"
	"github.com/dialtonehq/callcheck/internal/httpapi"
	"github.com/dialtonehq/callcheck/internal/mockreg"
	"github.com/dialtonehq/callcheck/internal/pbx"
	"github.com/dialtonehq/callcheck/internal/pbx/ami"
	"github.com/dialtonehq/callcheck/internal/pbx/ari"
	"github.com/dialtonehq/callcheck/logger"
	"github.com/dialtonehq/callcheck/pkg/buildinfo"
	"github.com/dialtonehq/callcheck/pkg/cli"
	"github.com/dialtonehq/callcheck/pkg/web"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(s string, args ...interface{}) {}))

	opts := parseCLI()

	if opts.Version {
		fmt.Printf("callcheckd, version: %s\n", buildinfo.Version)
		return
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logger.Level.SetByName(lvl)
	}
	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	log := logger.New().With(slog.String("component", "main"))

	cfg, err := config.Load(opts.ConfigFile, opts.EnvFile)
	if err != nil {
		log.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}
	if opts.ListenAddr != "" {
		cfg.ListenAddr = opts.ListenAddr
	}

	registry := mockreg.New(cfg.MockTTL())

	svc := checker.New(
		registry,
		transportFactory(cfg.Switch),
		logger.New().With(slog.String("component", "checker")),
	)

	srv := httpapi.New(httpapi.Config{
		ListenAddr: cfg.ListenAddr,
		APIKey:     cfg.Auth.APIKey,
		DevAPIKey:  cfg.Auth.DevAPIKey,
	}, svc, registry, logger.New().With(slog.String("component", "httpapi")))

	log.Infof("callcheckd %s starting, switch transport '%s'", buildinfo.Version, cfg.Switch.Transport)

	if opts.ConfigFile != "" {
		prev := cfg
		stop, err := config.Watch(opts.ConfigFile, log, func(next config.Config) {
			srv.SetAPIKeys(next.Auth.APIKey, next.Auth.DevAPIKey)
			registry.SetTTL(next.MockTTL())
			if next.Switch != prev.Switch {
				log.Warning("switch settings changed on disk, restart to apply")
			}
			if next.ListenAddr != prev.ListenAddr {
				log.Warning("listen address changed on disk, restart to apply")
			}
			prev = next
		})
		if err != nil {
			log.Warningf("config watch disabled: %v", err)
		} else {
			defer stop()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorf("http server: %v", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warningf("shutdown: %v", err)
	}
	<-errCh
}

func parseCLI() *cli.Option {
	opt, err := cli.Parse(os.Args)
	if err != nil {
		if cli.IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	return opt
}

// transportFactory builds one switch session per call, so every check and
// disconnect runs on its own connection.
func transportFactory(cfg config.SwitchConfig) func() pbx.ChannelTransport {
	switch cfg.Transport {
	case "ari":
		ariCfg := ari.Config{
			HTTPConfig: web.HTTPConfig{
				RequestConfig: web.RequestConfig{
					URL:      cfg.ARI.URL,
					Username: cfg.ARI.Username,
					Password: cfg.ARI.Password,
				},
				ClientConfig: web.ClientConfig{
					Timeout: cfg.Timeout,
				},
			},
		}
		log := logger.New().With(slog.String("component", "ari"))
		return func() pbx.ChannelTransport { return ari.New(ariCfg, log) }
	default:
		amiCfg := ami.Config{
			Address:  net.JoinHostPort(cfg.AMI.Host, strconv.Itoa(cfg.AMI.Port)),
			Username: cfg.AMI.Username,
			Secret:   cfg.AMI.Password,
			Timeout:  cfg.Timeout.Duration(),
		}
		log := logger.New().With(slog.String("component", "ami"))
		return func() pbx.ChannelTransport { return ami.New(amiCfg, log) }
	}
}
