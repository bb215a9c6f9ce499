package metrics

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func newTestMetrics() *QueryMetrics {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewQueryMetrics(log)
}

func TestQueryMetrics_RecordQuery(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(QueryList, 100*time.Millisecond, nil, 12)

	stats := m.GetStats()
	if stats.List.CallsTotal != 1 {
		t.Errorf("expected 1 list query, got %d", stats.List.CallsTotal)
	}
	if stats.List.ErrorsTotal != 0 {
		t.Errorf("expected 0 list errors, got %d", stats.List.ErrorsTotal)
	}
	if stats.List.ResultsTotal != 12 {
		t.Errorf("expected 12 results, got %d", stats.List.ResultsTotal)
	}

	m.RecordQuery(QueryList, 50*time.Millisecond, errors.New("test error"), 0)

	stats = m.GetStats()
	if stats.List.CallsTotal != 2 {
		t.Errorf("expected 2 list queries, got %d", stats.List.CallsTotal)
	}
	if stats.List.ErrorsTotal != 1 {
		t.Errorf("expected 1 list error, got %d", stats.List.ErrorsTotal)
	}
	if stats.List.AvgResultCount != 6 {
		t.Errorf("expected avg result count 6, got %.2f", stats.List.AvgResultCount)
	}
}

func TestQueryMetrics_AllKinds(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(QueryList, 10*time.Millisecond, nil, 1)
	m.RecordQuery(QueryProximity, 20*time.Millisecond, nil, 1)
	m.RecordQuery(QuerySimilar, 30*time.Millisecond, nil, 1)
	m.RecordQuery(QueryGet, 5*time.Millisecond, nil, 1)

	stats := m.GetStats()
	for name, s := range map[string]KindStats{
		"list":      stats.List,
		"proximity": stats.Proximity,
		"similar":   stats.Similar,
		"get":       stats.Get,
	} {
		if s.CallsTotal != 1 {
			t.Errorf("expected 1 %s query, got %d", name, s.CallsTotal)
		}
	}
}

func TestQueryMetrics_UnknownKindIgnored(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(QueryKind("bogus"), time.Millisecond, nil, 3)

	stats := m.GetStats()
	if stats.List.CallsTotal+stats.Proximity.CallsTotal+stats.Similar.CallsTotal+stats.Get.CallsTotal != 0 {
		t.Error("expected unknown kind to be ignored")
	}
}

func TestQueryMetrics_NilSafe(t *testing.T) {
	var m *QueryMetrics
	m.RecordQuery(QueryList, time.Millisecond, nil, 1)
}

func TestQueryMetrics_Timer(t *testing.T) {
	m := newTestMetrics()

	timer := m.StartTimer(QueryProximity)
	time.Sleep(10 * time.Millisecond)
	timer.Stop(nil, 5)

	stats := m.GetStats()
	if stats.Proximity.CallsTotal != 1 {
		t.Errorf("expected 1 proximity query, got %d", stats.Proximity.CallsTotal)
	}
	if stats.Proximity.LastLatencyMs < 10 {
		t.Errorf("expected latency >= 10ms, got %d", stats.Proximity.LastLatencyMs)
	}
	if stats.Proximity.ResultsTotal != 5 {
		t.Errorf("expected 5 results, got %d", stats.Proximity.ResultsTotal)
	}
}

func TestQueryMetrics_ErrorRate(t *testing.T) {
	m := newTestMetrics()

	// 3 успешных запроса, 1 ошибка = error rate 25%
	m.RecordQuery(QuerySimilar, 10*time.Millisecond, nil, 4)
	m.RecordQuery(QuerySimilar, 10*time.Millisecond, nil, 4)
	m.RecordQuery(QuerySimilar, 10*time.Millisecond, nil, 4)
	m.RecordQuery(QuerySimilar, 10*time.Millisecond, errors.New("error"), 0)

	stats := m.GetStats()
	if stats.Similar.ErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %.2f", stats.Similar.ErrorRate)
	}
}

func TestQueryMetrics_AvgLatency(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(QueryGet, 100*time.Millisecond, nil, 1)
	m.RecordQuery(QueryGet, 200*time.Millisecond, nil, 1)

	stats := m.GetStats()
	if stats.Get.AvgLatencyMs != 150.0 {
		t.Errorf("expected avg latency 150.00, got %.2f", stats.Get.AvgLatencyMs)
	}
}

func TestQueryMetrics_Reset(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery(QueryList, 100*time.Millisecond, nil, 10)
	m.RecordQuery(QueryProximity, 50*time.Millisecond, nil, 2)

	m.Reset()

	stats := m.GetStats()
	if stats.List.CallsTotal != 0 {
		t.Errorf("expected 0 list queries after reset, got %d", stats.List.CallsTotal)
	}
	if stats.Proximity.ResultsTotal != 0 {
		t.Errorf("expected 0 proximity results after reset, got %d", stats.Proximity.ResultsTotal)
	}
}

func TestMeasure(t *testing.T) {
	m := newTestMetrics()

	got, err := Measure(context.Background(), m, QueryList, func(ctx context.Context) ([]int, error) {
		return []int{1, 2, 3}, nil
	}, func(v []int) int { return len(v) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 items, got %d", len(got))
	}

	_, err = Measure(context.Background(), m, QueryList, func(ctx context.Context) ([]int, error) {
		return nil, errors.New("boom")
	}, func(v []int) int { return len(v) })
	if err == nil {
		t.Fatal("expected error")
	}

	stats := m.GetStats()
	if stats.List.CallsTotal != 2 || stats.List.ErrorsTotal != 1 || stats.List.ResultsTotal != 3 {
		t.Errorf("unexpected list stats: %+v", stats.List)
	}
}
