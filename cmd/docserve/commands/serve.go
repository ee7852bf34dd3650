package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docserve/internal/daemon"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/server"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `help:"Listen address, overrides server.addr"`
	NoWatch bool   `name:"no-watch" help:"Disable content watching"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := load(root)
	if err != nil {
		return err
	}
	cfg := a.cfg
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	if err := a.svc.Rebuild(ctx, "startup"); err != nil {
		return err
	}
	if cfg.Cache.WarmOnStart {
		n, err := a.svc.Cache().Warm(ctx)
		if err != nil {
			a.logger.Warn("Cache warm incomplete", logfields.Error(err))
		}
		a.logger.Info("Render cache warmed", logfields.Count(n))
	}

	var metricsHandler http.Handler
	if cfg.Monitoring.Metrics.Enabled {
		metricsHandler = metrics.HTTPHandler(a.registry)
	}
	srv := server.New(a.svc, server.Options{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeoutDuration(),
		WriteTimeout:   cfg.Server.WriteTimeoutDuration(),
		CacheSeconds:   cfg.Server.CacheSeconds,
		PathPrefix:     cfg.Sitemap.PathPrefix,
		ContentRoot:    cfg.Content.Root,
		SitemapBaseURL: cfg.Sitemap.BaseURL,
		SitemapMaxURLs: cfg.Sitemap.MaxURLs,
		HealthPath:     cfg.Monitoring.Health.Path,
		MetricsPath:    cfg.Monitoring.Metrics.Path,
		MetricsHandler: metricsHandler,
		AdminToken:     cfg.Server.AdminToken,
		Site: server.SiteInfo{
			Name:           cfg.Site.Name,
			Tagline:        cfg.Site.Tagline,
			DefaultOgImage: cfg.Site.DefaultOgImage,
			TwitterHandle:  cfg.Site.TwitterHandle,
			GitHubURL:      cfg.Site.GitHubURL,
			ThemeColor:     cfg.Site.ThemeColor,
		},
	}, a.logger)

	daemonErr := make(chan error, 1)
	go func() {
		daemonErr <- daemon.Run(ctx, a.svc.Rebuild, daemon.Options{
			ContentRoot: cfg.Content.Root,
			Watch:       cfg.Watch.Enabled && !s.NoWatch,
			Debounce:    cfg.Watch.DebounceDuration(),
			Interval:    cfg.Watch.RebuildIntervalDuration(),
			Retry:       cfg.Watch.RetryPolicy(),
			Logger:      a.logger,
		})
	}()

	serveErr := srv.ListenAndServe(ctx)
	cancel()
	if err := <-daemonErr; err != nil {
		a.logger.Warn("Content watcher stopped with error", logfields.Error(err))
	}
	if serveErr != nil {
		return serveErr
	}
	a.logger.Info("Shutdown complete")
	return nil
}
