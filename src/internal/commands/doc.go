// Package commands implements CLI command handlers for chuck-hq.
//
// Each command implements the Runner interface:
//   - Init(): Parse arguments and load configuration
//   - Run(): Execute the command
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - server: Bind the listener and serve the API (default)
//   - init: Create the data directory and empty documents
//   - check: Report the state of every document
//
// # Example Usage
//
//	cmd := commands.CreateServerCommand()
//	ctx := &commands.AppContext{ConfigPath: "chuck-hq.toml"}
//	if err := cmd.Init(args, ctx); err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cmd.Run(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package commands
