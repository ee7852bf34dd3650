package config

import (
	"time"

	"git.home.luguber.info/inful/docserve/internal/foundation"
	"git.home.luguber.info/inful/docserve/internal/retry"
	"git.home.luguber.info/inful/docserve/internal/sitemap"
)

// Validate checks a normalized and defaulted configuration. All problems are
// reported together.
func Validate(cfg *Config) error {
	var p foundation.Problems

	p = append(p, foundation.Run(cfg.Content.Root, foundation.NotBlank("content.root"))...)
	p = append(p, foundation.Run(cfg.Content.DefaultDocument, foundation.NotBlank("content.default_document"))...)

	if cfg.Subdomains.Enabled && cfg.Subdomains.PrimaryDomain == "" {
		p = append(p, foundation.Problem("subdomains.primary_domain", "required",
			"must be set when subdomains are enabled")...)
	}

	if cfg.Cache.MaxEntries < 0 {
		p = append(p, foundation.Problem("cache.max_entries", "range", "must not be negative")...)
	}
	p = append(p, foundation.Run(cfg.Sitemap.MaxURLs, foundation.Between("sitemap.max_urls", 1, sitemap.MaxURLs))...)

	p = append(p, foundation.Run(cfg.Server.Addr, foundation.NotBlank("server.addr"))...)
	if cfg.Server.CacheSeconds < 0 {
		p = append(p, foundation.Problem("server.cache_seconds", "range", "must not be negative")...)
	}
	p = append(p, checkDuration("server.read_timeout", cfg.Server.ReadTimeout, false)...)
	p = append(p, checkDuration("server.write_timeout", cfg.Server.WriteTimeout, false)...)
	p = append(p, checkDuration("watch.debounce", cfg.Watch.Debounce, false)...)
	p = append(p, checkDuration("watch.rebuild_interval", cfg.Watch.RebuildInterval, true)...)
	r := cfg.Watch.Retry
	if _, err := retry.ParseMode(r.Backoff); err != nil {
		p = append(p, foundation.Problem("watch.retry.backoff", "enum", "%v", err)...)
	}
	p = append(p, checkDuration("watch.retry.initial", r.Initial, false)...)
	p = append(p, checkDuration("watch.retry.max", r.Max, false)...)
	if r.MaxRetries < 0 {
		p = append(p, foundation.Problem("watch.retry.max_retries", "range", "must not be negative")...)
	}

	m := cfg.Monitoring
	p = append(p, foundation.Run(m.Logging.Level,
		foundation.OneOf("monitoring.logging.level", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError))...)
	p = append(p, foundation.Run(m.Logging.Format,
		foundation.OneOf("monitoring.logging.format", LogFormatText, LogFormatJSON))...)
	if m.Metrics.Enabled && m.Metrics.Path == m.Health.Path {
		p = append(p, foundation.Problem("monitoring.metrics.path", "conflict",
			"must differ from monitoring.health.path")...)
	}

	return p.Err()
}

// checkDuration requires a parseable, non-negative duration. Zero is accepted
// only when allowZero is set.
func checkDuration(field, raw string, allowZero bool) foundation.Problems {
	d, err := time.ParseDuration(raw)
	switch {
	case err != nil:
		return foundation.Problem(field, "duration", "invalid duration %q", raw)
	case d < 0:
		return foundation.Problem(field, "range", "must not be negative")
	case d == 0 && !allowZero:
		return foundation.Problem(field, "range", "must be greater than zero")
	}
	return nil
}
