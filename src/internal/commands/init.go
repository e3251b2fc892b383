package commands

import (
	"flag"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/log"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
	"github.com/chuckhq/chuck-hq/src/internal/utils"
)

func CreateInitCommand() *InitCommand {
	return &InitCommand{
		fs: flag.NewFlagSet("init", flag.ExitOnError),
	}
}

// InitCommand creates the data directory with an empty document per resource.
type InitCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	flags       overrides
	force       bool
	writeConfig bool
}

func (g *InitCommand) Name() string {
	return g.fs.Name()
}

func (g *InitCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx
	g.flags.register(g.fs, false)
	g.fs.BoolVar(&g.force, "force", false, "Overwrite existing documents with empty ones")
	g.fs.BoolVar(&g.writeConfig, "write-config", false, "Write the effective configuration if the file does not exist")

	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx, &g.flags)
	if err != nil {
		return err
	}
	g.cfg = cfg

	return nil
}

func (g *InitCommand) Run() error {
	store := newStore(g.cfg)
	log.Infof("Initializing data directory %s", store.Dir())

	for _, res := range g.cfg.Resources {
		path := store.Path(res.File)
		if utils.FileExists(path) && !g.force {
			log.Infof("  %s: keeping existing %s", res.Route, path)
			continue
		}

		if err := store.Write(res.File, storage.Empty(res.Kind)); err != nil {
			return err
		}
		log.Infof("  %s: created empty %s", res.Route, res.Kind)
	}

	if g.writeConfig {
		if utils.FileExists(g.ctx.ConfigPath) {
			log.Infof("Configuration file %s already exists, not overwriting", g.ctx.ConfigPath)
		} else if err := g.cfg.WriteConfig(g.ctx.ConfigPath); err != nil {
			return err
		} else {
			log.Infof("Configuration written to %s", g.ctx.ConfigPath)
		}
	}

	return nil
}
