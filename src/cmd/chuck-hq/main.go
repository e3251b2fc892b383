package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chuckhq/chuck-hq/src/internal/commands"
	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", config.DefaultConfigPath, "Path to configuration file (optional)")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Chuck HQ dashboard backend\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [command] [command options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  server                  Serve the REST API (default)\n")
		fmt.Fprintf(os.Stderr, "  init                    Create the data directory and empty documents\n")
		fmt.Fprintf(os.Stderr, "  check                   Report missing or corrupt documents\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateServerCommand(),
		commands.CreateInitCommand(),
		commands.CreateCheckCommand(),
	}

	args := flag.Args()
	if len(args) < 1 {
		args = []string{"server"}
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	flag.Usage()
	log.Fatalf("Unknown subcommand: %s", subcommand)
}
