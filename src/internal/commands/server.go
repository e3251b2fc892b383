package commands

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chuckhq/chuck-hq/src/internal/api"
	"github.com/chuckhq/chuck-hq/src/internal/bootstrap"
	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/identity"
	"github.com/chuckhq/chuck-hq/src/internal/log"
	"github.com/chuckhq/chuck-hq/src/internal/service"
)

const shutdownTimeout = 30 * time.Second

// ServerCommand implements the server command for running the HTTP API server.
type ServerCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	flags overrides

	bind    bootstrap.Binder
	onReady func(addr net.Addr)
}

// CreateServerCommand creates a new server command.
func CreateServerCommand() *ServerCommand {
	return &ServerCommand{
		fs: flag.NewFlagSet("server", flag.ExitOnError),
	}
}

// Name returns the command name.
func (c *ServerCommand) Name() string {
	return c.fs.Name()
}

// Init initializes the server command with arguments.
func (c *ServerCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	c.flags.register(c.fs, true)

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx, &c.flags)
	if err != nil {
		return err
	}
	c.cfg = cfg

	return nil
}

// Run serves the API until SIGINT or SIGTERM.
func (c *ServerCommand) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.RunContext(ctx)
}

// RunContext serves the API until ctx is cancelled. A listener that cannot
// be bound is fatal.
func (c *ServerCommand) RunContext(ctx context.Context) error {
	if path := c.cfg.GetConfigFilePath(); path != "" {
		log.Infof("Configuration loaded from: %s", path)
	}
	log.Infof("Data directory: %s", c.cfg.GetAbsDataDir())

	handler, err := c.buildHandler()
	if err != nil {
		return err
	}

	result, err := c.newMachine().Run(ctx)
	if err != nil {
		log.Fatalf("Could not start the API server: %v", err)
		return err
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	addr := result.Listener.Addr()
	log.Infof("API available at http://%s/api", addr)
	if c.onReady != nil {
		c.onReady(addr)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(recoverAndLog("http", func() error {
		if err := server.Serve(result.Listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}))

	g.Go(recoverAndLog("shutdown", func() error {
		<-gctx.Done()
		log.Infof("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Error during server shutdown: %v", err)
			return server.Close()
		}
		log.Infof("Server stopped gracefully")
		return nil
	}))

	return g.Wait()
}

func (c *ServerCommand) buildHandler() (http.Handler, error) {
	ids, err := identity.New(c.cfg.Storage.IDFormat)
	if err != nil {
		return nil, err
	}

	store := newStore(c.cfg)
	if c.cfg.Storage.SerializeWrites {
		log.Infof("Per-document write serialization enabled")
	}

	h := api.NewHandler(
		service.NewCollectionService(store, ids),
		service.NewSingletonService(store),
	)
	return api.NewRouter(c.cfg, h), nil
}

func (c *ServerCommand) newMachine() *bootstrap.Machine {
	opts := bootstrap.Options{
		Host:         c.cfg.Listen.Host,
		BasePort:     c.cfg.Listen.Port,
		MaxAttempts:  c.cfg.Listen.MaxAttempts,
		ReclaimDelay: c.cfg.GetReclaimDelay(),
		Bind:         c.bind,
	}
	if c.cfg.Listen.Reclaim {
		opts.Reclaimer = bootstrap.NewProcessReclaimer(c.cfg.Listen.Host, c.cfg.Listen.ReclaimCommand)
	}
	return bootstrap.NewMachine(opts)
}
