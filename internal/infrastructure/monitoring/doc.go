/*
Package monitoring provides Prometheus metrics for the file browser.

# Overview

Metrics cover HTTP requests, open directory views, directory listings, root
searches, filesystem mutations, browser sessions and WebSocket streams.

# Usage

	// Create metrics collector on a private registry
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetricsWith(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Hand the collector to the engine
	e := browser.Open(fsys, dir, browser.WithMetrics(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "rename")
	// ... perform operation ...
	timer.Stop("ok")

A nil *Metrics records nothing.

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
