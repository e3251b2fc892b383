package config

import (
	"path/filepath"
	"time"

	"github.com/chuckhq/chuck-hq/src/internal/utils"
)

// ResourceKind tells whether a document holds an array of items or a single object.
type ResourceKind string

const (
	KindCollection ResourceKind = "collection"
	KindSingleton  ResourceKind = "singleton"
)

const (
	IDFormatTimestamp = "timestamp"
	IDFormatUUID      = "uuid"
)

const (
	RECLAIM_TMPL_PORT = "port"
	RECLAIM_TMPL_HOST = "host"
)

type Config struct {
	// Listen holds HTTP listener settings.
	Listen ListenConfig `toml:"listen"`
	// Storage holds data directory settings.
	Storage StorageConfig `toml:"storage"`
	// UI optionally serves the built frontend.
	UI UIConfig `toml:"ui"`
	// Resources are the documents exposed under /api. Defaults to the six dashboard resources.
	Resources []*ResourceConfig `toml:"resources,omitempty"`
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose" env:"CHUCK_VERBOSE"`

	_absConfigFilePath string
}

type ListenConfig struct {
	// Host is the interface to bind (empty = all interfaces).
	Host string `toml:"host" env:"CHUCK_HOST" validate:"host_or_empty"`
	// Port is the base port; the bootstrap may walk forward from it.
	Port int `toml:"port" env:"PORT" validate:"required,min=1,max=65535"`
	// MaxAttempts bounds the number of bind attempts (default: 5).
	MaxAttempts int `toml:"max_attempts" validate:"required,min=1,max=100"`
	// ReclaimDelayMs is the pause after signaling a stale listener (default: 500).
	ReclaimDelayMs int `toml:"reclaim_delay_ms" validate:"min=0,max=60000"`
	// Reclaim enables terminating the process that holds the base port (default: true).
	Reclaim bool `toml:"reclaim" env:"CHUCK_RECLAIM"`
	// ReclaimCommand lists pids listening on a port, one per line. Available variables: {{port}}, {{host}}.
	ReclaimCommand string `toml:"reclaim_command"`
}

type StorageConfig struct {
	// DataDir holds one JSON file per resource. Relative paths resolve against the config file directory.
	DataDir string `toml:"data_dir" env:"CHUCK_DATA_DIR" validate:"required"`
	// SerializeWrites holds a per-document lock across read-modify-write (default: false).
	SerializeWrites bool `toml:"serialize_writes" env:"CHUCK_SERIALIZE_WRITES"`
	// IDFormat selects generated item ids: "timestamp" (unix millis) or "uuid" (v7).
	IDFormat string `toml:"id_format" env:"CHUCK_ID_FORMAT" validate:"required,oneof=timestamp uuid"`
}

type UIConfig struct {
	// Dir is the built frontend directory (empty = API only).
	Dir string `toml:"dir" env:"CHUCK_UI_DIR"`
}

type ResourceConfig struct {
	// Route is the path segment under /api.
	Route string `toml:"route" json:"route" validate:"required,resource_name"`
	// File is the document file name inside the data directory.
	File string `toml:"file" json:"file" validate:"required,resource_file"`
	// Kind is "collection" or "singleton".
	Kind ResourceKind `toml:"kind" json:"kind" validate:"required,oneof=collection singleton"`
}

func (c *Config) GetConfigDir() string {
	if c._absConfigFilePath == "" {
		if wd, err := filepath.Abs("."); err == nil {
			return wd
		}
		return "."
	}
	return filepath.Dir(c._absConfigFilePath)
}

func (c *Config) GetConfigFilePath() string {
	return c._absConfigFilePath
}

func (c *Config) GetAbsDataDir() string {
	return utils.GetAbsolutePath(c.Storage.DataDir, c.GetConfigDir())
}

// GetAbsUIDir returns the frontend directory, or "" when UI serving is disabled.
func (c *Config) GetAbsUIDir() string {
	if c.UI.Dir == "" {
		return ""
	}
	return utils.GetAbsolutePath(c.UI.Dir, c.GetConfigDir())
}

func (c *Config) GetReclaimDelay() time.Duration {
	return time.Duration(c.Listen.ReclaimDelayMs) * time.Millisecond
}

// Collections returns the resources of kind collection in declaration order.
func (c *Config) Collections() []*ResourceConfig {
	return c.resourcesOfKind(KindCollection)
}

// Singletons returns the resources of kind singleton in declaration order.
func (c *Config) Singletons() []*ResourceConfig {
	return c.resourcesOfKind(KindSingleton)
}

func (c *Config) resourcesOfKind(kind ResourceKind) []*ResourceConfig {
	out := make([]*ResourceConfig, 0, len(c.Resources))
	for _, r := range c.Resources {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// KindOf returns the kind of the resource stored in file, if one is registered.
func (c *Config) KindOf(file string) (ResourceKind, bool) {
	for _, r := range c.Resources {
		if r.File == file {
			return r.Kind, true
		}
	}
	return "", false
}
