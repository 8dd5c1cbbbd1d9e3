// SPDX-License-Identifier: GPL-2.0-or-later

// Command gcastd is the remote-control appliance server: it loads the
// configuration, opens the file index cache, and listens for the one
// remote this appliance serves, driving its state machine for as long as
// it stays connected.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"gcast/config"
	"gcast/pkg/fileindex"
	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/log"
	"gcast/pkg/mpv"
	"gcast/pkg/process"
	"gcast/pkg/statemachine"
	"gcast/pkg/transport"
)

func main() {
	configPath := flag.String("config", "/etc/gcast/config.toml", "path to config.toml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "gcastd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.NewLogger()

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return fmt.Errorf("resolving cache dir: %w", err)
	}
	store, err := fileindex.OpenStore(filepath.Join(cacheDir, "gcast", "index.db"))
	if err != nil {
		return fmt.Errorf("opening file index cache: %w", err)
	}
	defer store.Close()

	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}
	mpvConfigDir := filepath.Join(configDir, "gcast", "mpv")

	deps := &statemachine.Deps{
		Config:       cfg,
		Log:          logger,
		NewNative:    mpv.UnimplementedNative,
		MpvConfigDir: mpvConfigDir,
		// TODO: make the preferred languages configurable; hardcoded to
		// match the appliance's one deployment until there's a reason
		// to expose it.
		PreferredSub:   mpv.LangEnglish,
		PreferredAudio: mpv.LangJapanese,
		NewProcess:     process.New,
		Store:          store,
	}

	transportServer := transport.NewServer(fmt.Sprintf(":%d", cfg.Port), logger)
	handle := func(ctx context.Context, from gatekeeper.Receiver, to gatekeeper.Sender) error {
		return statemachine.Start(ctx, from, to, deps)
	}

	sup := suture.New("gcastd", suture.Spec{})
	sup.Add(serviceFunc(func(ctx context.Context) error {
		logger.Start(ctx)
		return ctx.Err()
	}))
	sup.Add(serviceFunc(func(ctx context.Context) error {
		return transportServer.ListenAndServe(ctx, handle)
	}))

	ctx, cancel := context.WithCancel(context.Background())

	if cfg.RefreshCacheBoot {
		go refreshOnBoot(cfg, store, logger)
	}

	fatal := make(chan error, 1)
	go func() { fatal <- sup.Serve(ctx) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-fatal:
		cancel()
		return err
	case sig := <-stop:
		logger.Info().Src("gcastd").Msgf("received %v, shutting down", sig)
	}

	cancel()

	select {
	case <-fatal:
	case <-time.After(5 * time.Second):
		logger.Warn().Src("gcastd").Msg("services did not stop within the shutdown grace period")
	}
	return nil
}

func refreshOnBoot(cfg *config.Config, store *fileindex.Store, logger *log.Logger) {
	idx, err := fileindex.Refresh(cfg.RootDirs, func(front.FsView) {})
	if err != nil {
		logger.Warn().Src("gcastd").Msgf("boot cache refresh failed: %v", err)
		return
	}
	if err := store.Save(idx); err != nil {
		logger.Warn().Src("gcastd").Msgf("saving boot-refreshed cache failed: %v", err)
	}
}

type serviceFunc func(ctx context.Context) error

func (f serviceFunc) Serve(ctx context.Context) error { return f(ctx) }
