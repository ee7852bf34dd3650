package config

import (
	"git.home.luguber.info/inful/docserve/internal/retry"
	"git.home.luguber.info/inful/docserve/internal/sitemap"
)

// defaultApplier fills unset values for one configuration section.
type defaultApplier interface {
	apply(cfg *Config)
	domain() string
}

type contentDefaults struct{}

func (contentDefaults) domain() string { return "content" }

func (contentDefaults) apply(cfg *Config) {
	c := &cfg.Content
	if c.Root == "" {
		c.Root = "./content"
	}
	if c.DefaultDocument == "" {
		c.DefaultDocument = "index.md"
	}
	if c.NavFile == "" {
		c.NavFile = "toc.yml"
	}
	if c.ReadmeName == "" {
		c.ReadmeName = "readme.md"
	}
}

type sitemapDefaults struct{}

func (sitemapDefaults) domain() string { return "sitemap" }

func (sitemapDefaults) apply(cfg *Config) {
	if cfg.Sitemap.MaxURLs == 0 {
		cfg.Sitemap.MaxURLs = sitemap.MaxURLs
	}
	if cfg.Sitemap.PathPrefix == "" {
		cfg.Sitemap.PathPrefix = "/guide"
	}
}

type serverDefaults struct{}

func (serverDefaults) domain() string { return "server" }

func (serverDefaults) apply(cfg *Config) {
	s := &cfg.Server
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	if s.ReadTimeout == "" {
		s.ReadTimeout = "10s"
	}
	if s.WriteTimeout == "" {
		s.WriteTimeout = "30s"
	}
	if s.CacheSeconds == 0 {
		s.CacheSeconds = 300
	}
}

type watchDefaults struct{}

func (watchDefaults) domain() string { return "watch" }

func (watchDefaults) apply(cfg *Config) {
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = "300ms"
	}
	if cfg.Watch.RebuildInterval == "" {
		cfg.Watch.RebuildInterval = "0s"
	}
	r := &cfg.Watch.Retry
	if r.Backoff == "" {
		r.Backoff = string(retry.ModeLinear)
	}
	if r.Initial == "" {
		r.Initial = "1s"
	}
	if r.Max == "" {
		r.Max = "30s"
	}
}

type monitoringDefaults struct{}

func (monitoringDefaults) domain() string { return "monitoring" }

func (monitoringDefaults) apply(cfg *Config) {
	m := &cfg.Monitoring
	if m.Metrics.Path == "" {
		m.Metrics.Path = "/metrics"
	}
	if m.Health.Path == "" {
		m.Health.Path = "/health"
	}
	if m.Logging.Level == "" {
		m.Logging.Level = LogLevelInfo
	}
	if m.Logging.Format == "" {
		m.Logging.Format = LogFormatText
	}
}

type siteDefaults struct{}

func (siteDefaults) domain() string { return "site" }

func (siteDefaults) apply(cfg *Config) {
	if cfg.Site.Name == "" {
		cfg.Site.Name = "Documentation"
	}
	if cfg.Site.ThemeColor == "" {
		cfg.Site.ThemeColor = "#1f2937"
	}
}

var defaultAppliers = []defaultApplier{
	contentDefaults{},
	sitemapDefaults{},
	serverDefaults{},
	watchDefaults{},
	monitoringDefaults{},
	siteDefaults{},
}

// ApplyDefaults fills every unset value. It runs after Normalize.
func ApplyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.apply(cfg)
	}
}
