package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Example returns the configuration written by Init.
func Example() Config {
	enabled := true
	return Config{
		Version: CurrentVersion,
		Content: ContentConfig{
			Root:             "./content",
			DefaultDocument:  "index.md",
			PreferIndexFiles: &enabled,
			NavFile:          "toc.yml",
			ReadmeName:       "readme.md",
		},
		Subdomains: SubdomainConfig{
			Enabled:       true,
			PrimaryDomain: "downpatch.com",
			Ignored:       []string{"www"},
		},
		Cache:   CacheConfig{MaxEntries: 0, WarmOnStart: true},
		Sitemap: SitemapConfig{MaxURLs: 50000, PathPrefix: "/guide"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  "10s",
			WriteTimeout: "30s",
			CacheSeconds: 300,
			AdminToken:   "${DOCSERVE_ADMIN_TOKEN}",
		},
		Watch: WatchConfig{
			Enabled:         true,
			Debounce:        "300ms",
			RebuildInterval: "0s",
			Retry:           RetryConfig{Backoff: "linear", Initial: "1s", Max: "30s", MaxRetries: 2},
		},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true, Path: "/metrics"},
			Health:  MonitoringHealth{Path: "/health"},
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
		},
		Site: SiteConfig{
			Name:           "downpatch.com",
			Tagline:        "Speedrun guides and setup",
			DefaultOgImage: "/assets/og/default.png",
			ThemeColor:     "#1f2937",
		},
	}
}

// Init writes the example configuration to path. An existing file is kept
// unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError(
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal example config").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
