package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/sitemap"
)

// NormalizationResult captures adjustments made by Normalize.
type NormalizationResult struct{ Warnings []string }

func (r *NormalizationResult) changed(field string, from, to any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to))
}

// Normalize canonicalizes enumerations, paths and bounds in place.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	normalizeContent(&c.Content)
	normalizeSubdomains(&c.Subdomains)
	normalizeSitemap(&c.Sitemap, res)
	normalizeMonitoring(&c.Monitoring, res)
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	c.Watch.Debounce = strings.TrimSpace(c.Watch.Debounce)
	c.Watch.RebuildInterval = strings.TrimSpace(c.Watch.RebuildInterval)
	c.Watch.Retry.Backoff = strings.ToLower(strings.TrimSpace(c.Watch.Retry.Backoff))
	c.Watch.Retry.Initial = strings.TrimSpace(c.Watch.Retry.Initial)
	c.Watch.Retry.Max = strings.TrimSpace(c.Watch.Retry.Max)
	return res
}

func normalizeContent(cc *ContentConfig) {
	cc.Root = strings.TrimSpace(cc.Root)
	cc.DefaultDocument = strings.TrimSpace(cc.DefaultDocument)
	cc.NavFile = strings.TrimSpace(cc.NavFile)
	cc.ReadmeName = strings.TrimSpace(cc.ReadmeName)
}

func normalizeSubdomains(s *SubdomainConfig) {
	s.PrimaryDomain = strings.Trim(strings.ToLower(strings.TrimSpace(s.PrimaryDomain)), ".")
	ignored := s.Ignored[:0]
	for _, sub := range s.Ignored {
		if sub = strings.ToLower(strings.TrimSpace(sub)); sub != "" {
			ignored = append(ignored, sub)
		}
	}
	s.Ignored = ignored
}

func normalizeSitemap(s *SitemapConfig, res *NormalizationResult) {
	if s.MaxURLs != 0 {
		if clamped := sitemap.ClampMax(s.MaxURLs); clamped != s.MaxURLs {
			res.changed("sitemap.max_urls", s.MaxURLs, clamped)
			s.MaxURLs = clamped
		}
	}
	s.PathPrefix = cleanPathPrefix(s.PathPrefix)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
}

func normalizeMonitoring(m *MonitoringConfig, res *NormalizationResult) {
	if raw := string(m.Logging.Level); raw != "" {
		if lvl := NormalizeLogLevel(raw); lvl != m.Logging.Level {
			res.changed("monitoring.logging.level", m.Logging.Level, lvl)
			m.Logging.Level = lvl
		}
	}
	if raw := string(m.Logging.Format); raw != "" {
		if f := NormalizeLogFormat(raw); f != m.Logging.Format {
			res.changed("monitoring.logging.format", m.Logging.Format, f)
			m.Logging.Format = f
		}
	}
	m.Metrics.Path = cleanRoutePath(m.Metrics.Path)
	m.Health.Path = cleanRoutePath(m.Health.Path)
}

// cleanPathPrefix returns "" or "/a/b" without a trailing slash.
func cleanPathPrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// cleanRoutePath returns "" or a path with exactly one leading slash.
func cleanRoutePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return "/" + strings.TrimLeft(p, "/")
}
