// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the LedgerVault CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the LedgerVault HTTP endpoint.
//   - DownloadDir: directory (relative to the working directory) where
//     downloaded files are saved.
type Config struct {
	ServerEndpointAddr string
	DownloadDir        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:3000"
	c.DownloadDir = "downloads"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
