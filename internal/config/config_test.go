package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "docserve.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_MinimalAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version: \"1.0\"\n"))
	require.NoError(t, err)

	require.Equal(t, "./content", cfg.Content.Root)
	require.Equal(t, "index.md", cfg.Content.DefaultDocument)
	require.Equal(t, "toc.yml", cfg.Content.NavFile)
	require.True(t, cfg.Content.PreferIndex())
	require.True(t, cfg.Content.OverridesEnabled())
	require.Equal(t, 50000, cfg.Sitemap.MaxURLs)
	require.Equal(t, "/guide", cfg.Sitemap.PathPrefix)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 300, cfg.Server.CacheSeconds)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeoutDuration())
	require.Equal(t, 300*time.Millisecond, cfg.Watch.DebounceDuration())
	require.Zero(t, cfg.Watch.RebuildIntervalDuration())
	require.Zero(t, cfg.Watch.RetryPolicy().MaxRetries)
	require.Equal(t, "/metrics", cfg.Monitoring.Metrics.Path)
	require.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Monitoring.Logging.Format)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCSERVE_TEST_ROOT", "/srv/guides")
	cfg, err := Load(writeConfig(t, "version: \"1.0\"\ncontent:\n  root: ${DOCSERVE_TEST_ROOT}\n"))
	require.NoError(t, err)
	require.Equal(t, "/srv/guides", cfg.Content.Root)
}

func TestLoad_NormalizesValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `version: "1.0"
content:
  prefer_index_files: false
subdomains:
  enabled: true
  primary_domain: " DownPatch.com. "
  ignored: [WWW, " ", api]
sitemap:
  max_urls: 90000
  path_prefix: "guide/"
  base_url: https://downpatch.com/
monitoring:
  metrics: { enabled: true, path: metrics }
  logging: { level: WARNING, format: JSON }
`))
	require.NoError(t, err)

	require.False(t, cfg.Content.PreferIndex())
	require.Equal(t, "downpatch.com", cfg.Subdomains.PrimaryDomain)
	require.Equal(t, []string{"www", "api"}, cfg.Subdomains.Ignored)
	require.Equal(t, 50000, cfg.Sitemap.MaxURLs)
	require.Equal(t, "/guide", cfg.Sitemap.PathPrefix)
	require.Equal(t, "https://downpatch.com", cfg.Sitemap.BaseURL)
	require.Equal(t, "/metrics", cfg.Monitoring.Metrics.Path)
	require.Equal(t, LogLevelWarn, cfg.Monitoring.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Monitoring.Logging.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.Contains(t, err.Error(), "configuration file not found")

	_, err = Load(writeConfig(t, "version: \"2.0\"\n"))
	require.ErrorContains(t, err, "unsupported configuration version")

	_, err = Load(writeConfig(t, "version: [\n"))
	require.ErrorContains(t, err, "failed to unmarshal config")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	_, err := Load(writeConfig(t, `version: "1.0"
subdomains:
  enabled: true
cache:
  max_entries: -1
watch:
  debounce: soon
  rebuild_interval: -5s
  retry: { backoff: sometimes, max_retries: -1 }
monitoring:
  metrics: { enabled: true, path: /status }
  health: { path: /status }
`))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	for _, field := range []string{
		"subdomains.primary_domain",
		"cache.max_entries",
		"watch.debounce",
		"watch.rebuild_interval",
		"watch.retry.backoff",
		"watch.retry.max_retries",
		"monitoring.metrics.path",
	} {
		require.Contains(t, err.Error(), field)
	}
}

func TestInit_WritesLoadableExample(t *testing.T) {
	t.Setenv("DOCSERVE_ADMIN_TOKEN", "secret")
	p := filepath.Join(t.TempDir(), "docserve.yaml")
	require.NoError(t, Init(p, false))

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "downpatch.com", cfg.Subdomains.PrimaryDomain)
	require.Equal(t, "secret", cfg.Server.AdminToken)
	require.True(t, cfg.Watch.Enabled)
	require.Equal(t, 2, cfg.Watch.RetryPolicy().MaxRetries)

	err = Init(p, false)
	require.ErrorContains(t, err, "already exists")
	require.NoError(t, Init(p, true))
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DOCSERVE_ENV_A=from-file\nDOCSERVE_ENV_B=\"quoted\"\n"), 0o600))
	t.Setenv("DOCSERVE_ENV_A", "from-env")
	t.Setenv("DOCSERVE_ENV_B", "")
	require.NoError(t, os.Unsetenv("DOCSERVE_ENV_B"))

	loadEnvFile(dir)
	require.Equal(t, "from-env", os.Getenv("DOCSERVE_ENV_A"))
	require.Equal(t, "quoted", os.Getenv("DOCSERVE_ENV_B"))
}

func TestSlogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", NormalizeLogLevel("debug").SlogLevel().String())
	require.Equal(t, "INFO", NormalizeLogLevel("chatty").SlogLevel().String())
	require.Equal(t, "ERROR", LogLevelError.SlogLevel().String())
}
