package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/domain/interfaces"
	"crypto-valuation-service/internal/infrastructure/logging"
	"crypto-valuation-service/internal/infrastructure/metrics"
)

const (
	latestKey       = "latest"
	reportKeyPrefix = "report:"
)

// ReportCacheAdapter guarda reportes de valuación como JSON sobre un interfaces.Cache
type ReportCacheAdapter struct {
	cache  interfaces.Cache
	prefix string
	ttl    time.Duration
}

// NewReportCacheAdapter crea un adapter; ttl aplica a cada reporte guardado
func NewReportCacheAdapter(cache interfaces.Cache, prefix string, ttl time.Duration) *ReportCacheAdapter {
	return &ReportCacheAdapter{
		cache:  cache,
		prefix: prefix,
		ttl:    ttl,
	}
}

// SaveReport guarda el reporte bajo su id y como último reporte
func (a *ReportCacheAdapter) SaveReport(ctx context.Context, report *entities.Report) error {
	if report == nil {
		return fmt.Errorf("cannot store nil report")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	for _, key := range []string{a.key(latestKey), a.key(reportKeyPrefix + report.ID)} {
		if err := a.cache.Set(ctx, key, string(data), a.ttl); err != nil {
			metrics.RecordCacheOperation("set", "error")
			logging.Cache().CacheError(ctx, "set", key, err)
			return fmt.Errorf("failed to store report under %s: %w", key, err)
		}
		metrics.RecordCacheOperation("set", "success")
		logging.Cache().Set(ctx, key, a.ttl.Seconds())
	}

	return nil
}

// LatestReport retorna el último reporte guardado o ErrReportNotFound
func (a *ReportCacheAdapter) LatestReport(ctx context.Context) (*entities.Report, error) {
	return a.load(ctx, a.key(latestKey))
}

// ReportByID retorna un reporte previo mientras su TTL no haya vencido
func (a *ReportCacheAdapter) ReportByID(ctx context.Context, id string) (*entities.Report, error) {
	return a.load(ctx, a.key(reportKeyPrefix+id))
}

// Close cierra el backend subyacente
func (a *ReportCacheAdapter) Close() error {
	return a.cache.Close()
}

func (a *ReportCacheAdapter) load(ctx context.Context, key string) (*entities.Report, error) {
	raw, err := a.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrKeyExpired) {
			metrics.RecordCacheOperation("get", "miss")
			logging.Cache().Miss(ctx, key, "get_report")
			return nil, ErrReportNotFound
		}
		metrics.RecordCacheOperation("get", "error")
		logging.Cache().CacheError(ctx, "get", key, err)
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var report entities.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		metrics.RecordCacheOperation("get", "error")
		return nil, fmt.Errorf("failed to unmarshal report at %s: %w", key, err)
	}

	metrics.RecordCacheOperation("get", "hit")
	logging.Cache().Hit(ctx, key, "get_report")
	return &report, nil
}

func (a *ReportCacheAdapter) key(name string) string {
	return a.prefix + name
}
