package commands

import (
	"flag"
	"fmt"
	"runtime/debug"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/log"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
}

// overrides holds command line values that take precedence over the
// configuration file and environment.
type overrides struct {
	dataDir string
	port    int
	host    string
	uiDir   string
}

func (o *overrides) register(fs *flag.FlagSet, withListen bool) {
	fs.StringVar(&o.dataDir, "data-dir", "", "Directory holding the JSON documents")
	if withListen {
		fs.IntVar(&o.port, "port", 0, "Base port to listen on")
		fs.StringVar(&o.host, "host", "", "Host to listen on (empty = all interfaces)")
		fs.StringVar(&o.uiDir, "ui-dir", "", "Serve the built dashboard from this directory")
	}
}

func (o *overrides) apply(cfg *config.Config) {
	if o.dataDir != "" {
		cfg.Storage.DataDir = o.dataDir
	}
	if o.port != 0 {
		cfg.Listen.Port = o.port
	}
	if o.host != "" {
		cfg.Listen.Host = o.host
	}
	if o.uiDir != "" {
		cfg.UI.Dir = o.uiDir
	}
}

// loadAndValidateConfigOrFail loads configuration, applies flag overrides and
// validates the result.
func loadAndValidateConfigOrFail(ctx *AppContext, o *overrides) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if o != nil {
		o.apply(cfg)
	}
	if ctx.Verbose {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		log.SetVerbose(true)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}

func newStore(cfg *config.Config) *storage.Store {
	return storage.NewStore(cfg.GetAbsDataDir(),
		storage.WithKindResolver(cfg.KindOf),
		storage.WithSerializedWrites(cfg.Storage.SerializeWrites),
	)
}

// recoverAndLog runs fn and turns a panic into a logged error so one failing
// goroutine does not take the process down.
func recoverAndLog(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("[%s] Panic recovered: %v", name, r)
				log.Debugf("%s", debug.Stack())
				err = nil
			}
		}()
		return fn()
	}
}
