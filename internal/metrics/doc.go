// Package metrics provides the observability hooks for docserve.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	cache := render.NewCache(index, renderer, render.WithRecorder(metrics.NoopRecorder{}))
//
// When monitoring.metrics.enabled is set the server swaps in a
// PrometheusRecorder registered on a private registry and exposes it through
// HTTPHandler.
package metrics
