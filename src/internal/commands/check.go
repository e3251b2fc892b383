package commands

import (
	"flag"
	"fmt"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/log"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
)

func CreateCheckCommand() *CheckCommand {
	return &CheckCommand{
		fs: flag.NewFlagSet("check", flag.ExitOnError),
	}
}

// CheckCommand reads every registered document and reports its state.
type CheckCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	flags overrides
}

func (g *CheckCommand) Name() string {
	return g.fs.Name()
}

func (g *CheckCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx
	g.flags.register(g.fs, false)

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

func (g *CheckCommand) Run() error {
	store := newStore(g.cfg)
	log.Infof("Checking documents in %s", store.Dir())

	recovered := 0
	for _, res := range g.cfg.Resources {
		doc, result := store.Read(res.File)

		switch result.Status {
		case storage.StatusOK:
			log.Infof("  ✓ %s (%s): ok, %s", res.Route, res.File, describe(doc))
		case storage.StatusMissing:
			log.Warnf("  - %s (%s): missing, served as empty %s", res.Route, res.File, res.Kind)
		case storage.StatusRecovered:
			recovered++
			log.Errorf("  ✗ %s (%s): corrupt, served as empty %s: %v", res.Route, res.File, res.Kind, result.Reason)
		}
	}

	if recovered > 0 {
		log.Errorf("Check completed with failures")
		return fmt.Errorf("%d document(s) could not be parsed", recovered)
	}

	log.Infof("Check completed successfully")
	return nil
}

func describe(doc storage.Document) string {
	switch d := doc.(type) {
	case storage.Collection:
		return fmt.Sprintf("%d item(s)", len(d))
	case storage.Singleton:
		return fmt.Sprintf("%d key(s)", len(d))
	case storage.List:
		return fmt.Sprintf("array of %d element(s)", len(d))
	default:
		return "unknown document"
	}
}
