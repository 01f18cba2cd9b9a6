package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/classifier"
	"dsar/internal/detection/engine"
	"dsar/internal/detection/metrics"
	"dsar/internal/detection/pdfmeta"
	"dsar/internal/platform/config"
)

// loadCatalog returns the built-in catalog extended with the configured
// catalog file, if any.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if cfg.Detection.CatalogFile == "" {
		return cat, nil
	}
	return catalog.LoadFile(cat, cfg.Detection.CatalogFile)
}

// newEngine wires the detection stages the configuration allows. PDF
// metadata is always on; the classifier only with an API key.
func newEngine(cfg config.Config, reg prometheus.Registerer, logger *slog.Logger) (*engine.Engine, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(metrics.NewWithRegisterer(reg)),
		engine.WithLimits(cfg.Detection.MaxContentBytes, cfg.Detection.MaxMatchesPerPattern),
		engine.WithCache(cfg.Detection.CacheEntries),
		engine.WithMetadataExtractor(pdfmeta.New()),
	}
	if cfg.OpenAI.APIKey != "" {
		c, err := classifier.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, classifier.WithModel(cfg.OpenAI.Model))
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithCategoryClassifier(c))
	}
	return engine.New(cat, opts...)
}
