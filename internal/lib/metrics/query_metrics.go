package metrics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// QueryKind тип поискового запроса.
type QueryKind string

const (
	QueryList      QueryKind = "list"
	QueryProximity QueryKind = "proximity"
	QuerySimilar   QueryKind = "similar"
	QueryGet       QueryKind = "get"
)

var queryKinds = []QueryKind{QueryList, QueryProximity, QuerySimilar, QueryGet}

type counters struct {
	callsTotal     atomic.Int64
	errorsTotal    atomic.Int64
	latencyTotalMs atomic.Int64
	lastLatencyMs  atomic.Int64
	resultsTotal   atomic.Int64
}

// QueryMetrics метрики поисковых запросов. Набор типов фиксирован при создании,
// поэтому карта читается без блокировок.
type QueryMetrics struct {
	log      *slog.Logger
	counters map[QueryKind]*counters
}

func NewQueryMetrics(log *slog.Logger) *QueryMetrics {
	m := &QueryMetrics{
		log:      log,
		counters: make(map[QueryKind]*counters, len(queryKinds)),
	}
	for _, kind := range queryKinds {
		m.counters[kind] = &counters{}
	}
	return m
}

// RecordQuery записывает выполненный запрос.
func (m *QueryMetrics) RecordQuery(kind QueryKind, latency time.Duration, err error, results int) {
	if m == nil {
		return
	}
	c, ok := m.counters[kind]
	if !ok {
		return
	}

	latencyMs := latency.Milliseconds()
	c.callsTotal.Add(1)
	c.latencyTotalMs.Add(latencyMs)
	c.lastLatencyMs.Store(latencyMs)
	if results > 0 {
		c.resultsTotal.Add(int64(results))
	}
	if err != nil {
		c.errorsTotal.Add(1)
	}

	if m.log != nil {
		logAttrs := []any{
			slog.String("kind", string(kind)),
			slog.Int64("latency_ms", latencyMs),
			slog.Int("results", results),
		}
		if err != nil {
			logAttrs = append(logAttrs, slog.String("error", err.Error()))
			m.log.Warn("search query failed", logAttrs...)
		} else {
			m.log.Debug("search query completed", logAttrs...)
		}
	}
}

// QueryTimer помогает измерять время запросов.
type QueryTimer struct {
	metrics   *QueryMetrics
	kind      QueryKind
	startTime time.Time
}

// StartTimer начинает измерение времени запроса.
func (m *QueryMetrics) StartTimer(kind QueryKind) *QueryTimer {
	return &QueryTimer{
		metrics:   m,
		kind:      kind,
		startTime: time.Now(),
	}
}

// Stop останавливает таймер и записывает метрики.
func (t *QueryTimer) Stop(err error, results int) {
	t.metrics.RecordQuery(t.kind, time.Since(t.startTime), err, results)
}

// Stats текущая статистика по типам запросов.
type Stats struct {
	List      KindStats `json:"list"`
	Proximity KindStats `json:"proximity"`
	Similar   KindStats `json:"similar"`
	Get       KindStats `json:"get"`
}

// KindStats статистика по одному типу запроса.
type KindStats struct {
	CallsTotal     int64   `json:"calls_total"`
	ErrorsTotal    int64   `json:"errors_total"`
	ErrorRate      float64 `json:"error_rate"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	LastLatencyMs  int64   `json:"last_latency_ms"`
	ResultsTotal   int64   `json:"results_total"`
	AvgResultCount float64 `json:"avg_result_count"`
}

// GetStats возвращает текущую статистику.
func (m *QueryMetrics) GetStats() Stats {
	return Stats{
		List:      m.kindStats(QueryList),
		Proximity: m.kindStats(QueryProximity),
		Similar:   m.kindStats(QuerySimilar),
		Get:       m.kindStats(QueryGet),
	}
}

func (m *QueryMetrics) kindStats(kind QueryKind) KindStats {
	c, ok := m.counters[kind]
	if !ok {
		return KindStats{}
	}

	calls := c.callsTotal.Load()
	errs := c.errorsTotal.Load()
	results := c.resultsTotal.Load()

	var errorRate, avgLatency, avgResults float64
	if calls > 0 {
		errorRate = float64(errs) / float64(calls)
		avgLatency = float64(c.latencyTotalMs.Load()) / float64(calls)
		avgResults = float64(results) / float64(calls)
	}

	return KindStats{
		CallsTotal:     calls,
		ErrorsTotal:    errs,
		ErrorRate:      errorRate,
		AvgLatencyMs:   avgLatency,
		LastLatencyMs:  c.lastLatencyMs.Load(),
		ResultsTotal:   results,
		AvgResultCount: avgResults,
	}
}

// Reset сбрасывает все метрики.
func (m *QueryMetrics) Reset() {
	for _, c := range m.counters {
		c.callsTotal.Store(0)
		c.errorsTotal.Store(0)
		c.latencyTotalMs.Store(0)
		c.lastLatencyMs.Store(0)
		c.resultsTotal.Store(0)
	}
}

// Measure выполняет fn и записывает метрики. count возвращает размер результата.
func Measure[T any](
	ctx context.Context,
	m *QueryMetrics,
	kind QueryKind,
	fn func(ctx context.Context) (T, error),
	count func(T) int,
) (T, error) {
	timer := m.StartTimer(kind)
	result, err := fn(ctx)
	n := 0
	if err == nil && count != nil {
		n = count(result)
	}
	timer.Stop(err, n)
	return result, err
}
