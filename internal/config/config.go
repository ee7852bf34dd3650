// Package config loads the docserve YAML configuration.
package config

import (
	"time"

	"git.home.luguber.info/inful/docserve/internal/retry"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "docserve.yaml"

// CurrentVersion is the only configuration version accepted by Load.
const CurrentVersion = "1.0"

// Config is the root configuration document.
type Config struct {
	Version    string           `yaml:"version"`
	Content    ContentConfig    `yaml:"content"`
	Subdomains SubdomainConfig  `yaml:"subdomains"`
	Cache      CacheConfig      `yaml:"cache"`
	Sitemap    SitemapConfig    `yaml:"sitemap"`
	Server     ServerConfig     `yaml:"server"`
	Watch      WatchConfig      `yaml:"watch"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Site       SiteConfig       `yaml:"site"`
}

// ContentConfig locates the Markdown tree.
type ContentConfig struct {
	Root             string `yaml:"root"`
	DefaultDocument  string `yaml:"default_document"`
	PreferIndexFiles *bool  `yaml:"prefer_index_files,omitempty"`
	NavFile          string `yaml:"nav_file"`
	ReadmeName       string `yaml:"readme_name"`
	// NavOverrides toggles declared navigation files; nil means enabled.
	NavOverrides *bool `yaml:"nav_overrides,omitempty"`
	// AllowRawHTML passes inline HTML through the sanitiser instead of
	// dropping it.
	AllowRawHTML bool `yaml:"allow_raw_html"`
}

// SubdomainConfig controls host based folder selection.
type SubdomainConfig struct {
	Enabled       bool     `yaml:"enabled"`
	PrimaryDomain string   `yaml:"primary_domain"`
	Ignored       []string `yaml:"ignored"`
}

// CacheConfig sizes the render cache.
type CacheConfig struct {
	// MaxEntries of 0 leaves the cache unbounded.
	MaxEntries    int  `yaml:"max_entries"`
	WarmOnStart   bool `yaml:"warm_on_start"`
	WarmOnRebuild bool `yaml:"warm_on_rebuild"`
}

// SitemapConfig controls sitemap.xml output.
type SitemapConfig struct {
	MaxURLs    int    `yaml:"max_urls"`
	PathPrefix string `yaml:"path_prefix"`
	// BaseURL overrides the scheme and host taken from the request.
	BaseURL string `yaml:"base_url"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	// CacheSeconds is the max-age sent with page responses.
	CacheSeconds int `yaml:"cache_seconds"`
	// AdminToken, when set, must be sent as a bearer token to admin endpoints.
	AdminToken string `yaml:"admin_token"`
}

// WatchConfig configures content change detection.
type WatchConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Debounce        string `yaml:"debounce"`
	RebuildInterval string `yaml:"rebuild_interval"`
	Retry           RetryConfig `yaml:"retry"`
}

// RetryConfig controls retries of failed rebuilds. MaxRetries 0 disables them.
type RetryConfig struct {
	Backoff    string `yaml:"backoff"`
	Initial    string `yaml:"initial"`
	Max        string `yaml:"max"`
	MaxRetries int    `yaml:"max_retries"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration.
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// SiteConfig carries presentation values for the page layout.
type SiteConfig struct {
	Name           string `yaml:"name"`
	Tagline        string `yaml:"tagline"`
	DefaultOgImage string `yaml:"default_og_image"`
	TwitterHandle  string `yaml:"twitter_handle"`
	GitHubURL      string `yaml:"github_url"`
	ThemeColor     string `yaml:"theme_color"`
}

// PreferIndex reports whether folder/index.md wins over folder.md.
func (c ContentConfig) PreferIndex() bool {
	return c.PreferIndexFiles == nil || *c.PreferIndexFiles
}

// OverridesEnabled reports whether declared navigation files are honoured.
func (c ContentConfig) OverridesEnabled() bool {
	return c.NavOverrides == nil || *c.NavOverrides
}

// ReadTimeoutDuration returns the parsed read timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration { return parseDuration(s.ReadTimeout) }

// WriteTimeoutDuration returns the parsed write timeout.
func (s ServerConfig) WriteTimeoutDuration() time.Duration { return parseDuration(s.WriteTimeout) }

// DebounceDuration returns the parsed debounce window.
func (w WatchConfig) DebounceDuration() time.Duration { return parseDuration(w.Debounce) }

// RebuildIntervalDuration returns the periodic rebuild interval. Zero disables
// periodic rebuilds.
func (w WatchConfig) RebuildIntervalDuration() time.Duration { return parseDuration(w.RebuildInterval) }

// RetryPolicy builds the rebuild retry policy.
func (w WatchConfig) RetryPolicy() retry.Policy {
	r := w.Retry
	return retry.NewPolicy(retry.Mode(r.Backoff), parseDuration(r.Initial), parseDuration(r.Max), r.MaxRetries)
}

// parseDuration reads values already checked by validation; anything else is zero.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
