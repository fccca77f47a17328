package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("expected generated export name")
	}
	ctx := context.Background()
	rec.Observe(ctx, "transfer", true, 10*time.Millisecond)
	rec.Observe(ctx, "transfer", true, 5*time.Millisecond)
	rec.Observe(ctx, "transfer", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	snap := rec.Snapshot()
	if snap.DurationsMS["transfer"] != 16 {
		t.Fatalf("expected 16ms total, got %v", snap.DurationsMS["transfer"])
	}
	if snap.Results["transfer"]["success"] != 2 || snap.Results["transfer"]["error"] != 1 {
		t.Fatalf("unexpected result counters %v", snap.Results)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatalf("empty operation must be ignored")
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	_, span := tracer.Start(context.Background(), "breed")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "breed")
	span.End(context.DeadlineExceeded)

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" {
		t.Fatalf("span statuses wrong: %+v", entries)
	}
	if entries[1].Error == "" {
		t.Fatalf("error span should carry the message")
	}
	if !strings.Contains(buf.String(), `"operation":"breed"`) {
		t.Fatalf("spans should be encoded to the writer: %s", buf.String())
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "issue_genesis", true, 20*time.Millisecond)
	rec.Observe(ctx, "issue_genesis", false, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["cuecore_ledger_operations_total"] || !names["cuecore_ledger_operation_duration_seconds"] {
		t.Fatalf("expected ledger metric families, got %v", names)
	}

	// Double registration against the same registry must fail.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestExpvarRecorderLedgerGauges(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	f := newFixture(t, WithMetricsRecorder(rec))
	rec.WatchLedger(f.svc)

	if _, err := f.svc.IssueGenesis(context.Background(), admin, "g"); err != nil {
		t.Fatalf("issue genesis: %v", err)
	}
	snap := rec.Snapshot()
	if snap.Ledger == nil {
		t.Fatalf("expected ledger gauges after WatchLedger")
	}
	if snap.Ledger.Supply != 1 || snap.Ledger.GenesisIssued != 1 || snap.Ledger.Paused {
		t.Fatalf("unexpected gauges: %+v", snap.Ledger)
	}
}

func TestPrometheusLedgerGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	f := newFixture(t, WithMetricsRecorder(rec))
	if err := rec.WatchLedger(f.svc); err != nil {
		t.Fatalf("watch ledger: %v", err)
	}
	if _, err := f.svc.IssueGenesis(context.Background(), admin, "g"); err != nil {
		t.Fatalf("issue genesis: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := make(map[string]float64)
	for _, mf := range families {
		if len(mf.GetMetric()) == 1 && mf.GetMetric()[0].GetGauge() != nil {
			values[mf.GetName()] = mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	if values["cuecore_ledger_supply"] != 1 || values["cuecore_ledger_genesis_issued"] != 1 {
		t.Fatalf("unexpected gauge values: %v", values)
	}
	if values["cuecore_ledger_paused"] != 0 {
		t.Fatalf("registry should not report paused: %v", values)
	}

	// The gauges register once per registry.
	if err := rec.WatchLedger(f.svc); err == nil {
		t.Fatalf("expected duplicate gauge registration to fail")
	}
}

func TestServiceInstrumentationHooks(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	tracer := NewJSONTracer(nil)
	svc := NewInMemoryService(WithMetricsRecorder(rec), WithTracer(tracer))

	// Unauthorized pause: instrumented, rejected.
	_ = svc.Pause(context.Background(), "addr:nobody")

	snap := rec.Snapshot()
	if snap.Results["pause"]["error"] != 1 {
		t.Fatalf("expected instrumented rejection, got %v", snap.Results)
	}
	entries := tracer.Entries()
	if len(entries) != 1 || entries[0].Operation != "pause" || entries[0].Status != "error" {
		t.Fatalf("expected traced rejection, got %+v", entries)
	}
}
