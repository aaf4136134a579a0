// Package config loads and persists this server's on-disk configuration,
// adapted from the teacher's app/core/config package: a JSON file under the
// OS-specific user config directory, created with sane defaults on first
// run and merged with what's on disk on every subsequent run.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("config")

// AppName names the on-disk config directory.
const AppName = "radixdns"

// Config holds every tunable the server reads at startup. Unlike the
// teacher's single upstream pair, CacheCapacity and BlockListCapacity are
// new fields: the radix-LRU cache's bound is now a first-class setting
// rather than a hardcoded constant.
type Config struct {
	Upstream1         string `json:"upstream1"`
	Upstream2         string `json:"upstream2"`
	UDPPort           int    `json:"udp_port"`
	DoHPort           int    `json:"doh_port"`
	CertPath          string `json:"cert_path"`
	KeyPath           string `json:"key_path"`
	BlockListFile     string `json:"block_list_file"`
	CacheCapacity     int    `json:"cache_capacity"`
	BlockListCapacity int    `json:"block_list_capacity"`

	path string
}

// Default returns the built-in configuration, used both as the seed for a
// freshly written config file and as the fallback for any field a loaded
// file leaves invalid.
func Default() *Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	confDir := filepath.Join(dir, AppName)

	return &Config{
		Upstream1:         "1.1.1.1",
		Upstream2:         "8.8.8.8",
		UDPPort:           2053,
		DoHPort:           8443,
		CertPath:          filepath.Join(confDir, "cert", "server.crt"),
		KeyPath:           filepath.Join(confDir, "cert", "server.key"),
		BlockListFile:     filepath.Join(confDir, "blocklist.txt"),
		CacheCapacity:     10000,
		BlockListCapacity: 200000,
		path:              filepath.Join(confDir, "config.json"),
	}
}

// Load reads and merges the config file, creating it with defaults if it
// does not exist yet. Only fields that pass validation override the
// defaults, mirroring the teacher's defensive merge in LoadConfig.
func Load() (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(cfg.path); os.IsNotExist(err) {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("config: writing default: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(cfg.path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", cfg.path, err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", cfg.path, err)
	}

	merge(cfg, &loaded)
	return cfg, nil
}

func merge(dst, src *Config) {
	if isValidIP(src.Upstream1) && isValidIP(src.Upstream2) {
		dst.Upstream1 = src.Upstream1
		dst.Upstream2 = src.Upstream2
	}
	if src.UDPPort > 0 && src.UDPPort < 65536 {
		dst.UDPPort = src.UDPPort
	}
	if src.DoHPort > 0 && src.DoHPort < 65536 {
		dst.DoHPort = src.DoHPort
	}
	if src.CacheCapacity > 0 {
		dst.CacheCapacity = src.CacheCapacity
	}
	if src.BlockListCapacity > 0 {
		dst.BlockListCapacity = src.BlockListCapacity
	}
	if src.BlockListFile != "" {
		dst.BlockListFile = src.BlockListFile
	}
	if src.CertPath != "" {
		dst.CertPath = src.CertPath
	}
	if src.KeyPath != "" {
		dst.KeyPath = src.KeyPath
	}
}

// Save writes cfg to its on-disk path, creating the containing directory
// (0700, since the config directory may later hold TLS private keys) if
// needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("config: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("config: writing %s: %w", c.path, err)
	}
	log.Infow("wrote config", "path", c.path)
	return nil
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
