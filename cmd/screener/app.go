package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/metrics"
)

// app bundles the wired components shared by both subcommands.
type app struct {
	Fetcher  collector.Fetcher
	Cache    *collector.CachedFetcher
	Analyzer *analyzer.Analyzer
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

func newFetcher(cfg *config.Config, mock bool) collector.Fetcher {
	switch {
	case mock:
		return &collector.MockFetcher{Price: 100}
	case cfg.DataSource.BaseURL != "":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	}
}

func newApp(cfg *config.Config, mock bool) *app {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	cache := collector.NewCachedFetcher(newFetcher(cfg, mock), cfg.Cache.TTL, m)
	a := analyzer.New(cache, m)
	a.Period = cfg.DataSource.Period
	a.Params = cfg.EngineParams()

	return &app{Fetcher: cache, Cache: cache, Analyzer: a, Metrics: m, Registry: reg}
}
