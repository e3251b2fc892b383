// Package config handles configuration loading and validation for chuck-hq.
//
// A Config is assembled once at process start from, in order of precedence
// (lowest first):
//   - built-in defaults (port 3001, ./data, the six dashboard resources)
//   - an optional TOML file
//   - environment variables (PORT, CHUCK_DATA_DIR, CHUCK_HOST, ...)
//   - command-line flags applied by the commands package
//
// The resulting value is immutable by convention and is passed explicitly to
// the storage, api and bootstrap packages.
//
// # Resources
//
// The dashboard's documents are declared as data. Each resource has a route
// under /api, a file inside the data directory and a kind:
//
//	[[resources]]
//	route = "ideas"
//	file = "ideas.json"
//	kind = "collection"
//
// # Example Usage
//
//	cfg, err := config.LoadConfig("chuck-hq.toml")
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package config
