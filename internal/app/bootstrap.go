// Package app wires the subsystems into a running server: configuration,
// registry, loader, MCP server, and the optional hot-reload watcher.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"loom/internal/config"
	"loom/internal/loader"
	"loom/internal/registry"
	"loom/internal/server"
	"loom/internal/watcher"
	"loom/pkg/logging"
)

// Options are the command-line overrides layered on top of config.yaml.
// Zero values mean "use the configured value".
type Options struct {
	ComponentsRoot string
	Transport      string
	Host           string
	Port           int

	// Dev enables the hot-reload watcher.
	Dev bool

	// StrictSchemas promotes missing output-schema files to load errors.
	StrictSchemas bool
}

// Application holds the assembled subsystems.
type Application struct {
	Config   config.Config
	Registry *registry.Registry
	Loader   *loader.Loader
	Server   *server.Server
	Watcher  *watcher.Watcher
}

// Bootstrap loads configuration, builds the registry, and imports every
// component under the components root. It does not start any transport.
func Bootstrap(ctx context.Context, opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ComponentsRoot)
	if err != nil {
		return nil, err
	}
	applyOverrides(&cfg, opts)

	policy, err := registry.ParsePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	reg := registry.New(policy)
	ldr := loader.New(opts.ComponentsRoot, reg, loader.Options{
		StrictSchemas: cfg.StrictSchemas || opts.StrictSchemas,
	})

	counts, err := ldr.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load components from %s: %w", opts.ComponentsRoot, err)
	}
	logging.Info("App", "Registry ready with %d component(s): %s", reg.Len(), counts)

	application := &Application{
		Config:   cfg,
		Registry: reg,
		Loader:   ldr,
		Server:   server.New(cfg, reg),
	}

	if opts.Dev {
		debounce := time.Duration(cfg.DebounceMs) * time.Millisecond
		application.Watcher = watcher.New(opts.ComponentsRoot, ldr, debounce)
	}

	return application, nil
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.Transport != "" {
		cfg.Transport = opts.Transport
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}
}

// Run starts the server (and watcher in dev mode), then blocks until the
// context is cancelled or an interrupt arrives. Shutdown is graceful.
func (a *Application) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Server.Start(runCtx); err != nil {
		return err
	}
	logging.Info("App", "Serving on %s", a.Server.Endpoint())

	if a.Watcher != nil {
		if err := a.Watcher.Start(runCtx); err != nil {
			a.stopServer()
			return err
		}
	}

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logging.Info("App", "Received %s, shutting down", sig)
			cancel()
		case <-groupCtx.Done():
		}
		return nil
	})

	err := group.Wait()

	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.stopServer()
	a.Registry.Close()

	return err
}

func (a *Application) stopServer() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Stop(shutdownCtx); err != nil {
		logging.Error("App", err, "Error stopping server")
	}
}
