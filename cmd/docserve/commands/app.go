package commands

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	"git.home.luguber.info/inful/docserve/internal/markdown"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/nav"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/site"
	"git.home.luguber.info/inful/docserve/internal/slug"
)

// app wires the content pipeline from configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prom.Registry
	svc      *site.Service
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	mapper := slug.NewMapper(slug.Options{
		Root:              cfg.Content.Root,
		DefaultDocument:   cfg.Content.DefaultDocument,
		PreferIndexFiles:  cfg.Content.PreferIndex(),
		SubdomainFolders:  cfg.Subdomains.Enabled,
		PrimaryDomain:     cfg.Subdomains.PrimaryDomain,
		IgnoredSubdomains: cfg.Subdomains.Ignored,
	})
	index := content.NewIndex(mapper,
		content.WithLogger(logger),
		content.WithNavFile(cfg.Content.NavFile),
		content.WithRecorder(rec))
	renderer := markdown.NewGoldmarkRenderer(markdown.Options{
		AllowRawHTML: cfg.Content.AllowRawHTML,
		ResolveAsset: render.ResolveAssetPath,
	})
	cache := render.NewCache(index, renderer,
		render.WithMaxEntries(cfg.Cache.MaxEntries),
		render.WithLogger(logger),
		render.WithRecorder(rec))
	builder := nav.NewBuilder(index, cache,
		nav.WithReadmeName(cfg.Content.ReadmeName),
		nav.WithOverrides(cfg.Content.OverridesEnabled()),
		nav.WithLogger(logger))

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		svc: site.New(mapper, index, cache, builder,
			site.WithWarmOnRebuild(cfg.Cache.WarmOnRebuild),
			site.WithLogger(logger),
			site.WithRecorder(rec)),
	}
}

// load reads the configuration and wires the pipeline. The index is empty
// until the caller rebuilds it.
func load(root *CLI) (*app, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, root.configureLogging(cfg)), nil
}
