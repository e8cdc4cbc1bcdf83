package logging

import (
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestJobField(t *testing.T) {
	logger, logs := observed(zapcore.InfoLevel)

	seed := int64(77)
	m := JobMetrics{
		JobID:    "job-1",
		Backend:  "sd",
		Width:    512,
		Height:   512,
		Seed:     &seed,
		Retried:  true,
		Generate: 2 * time.Second,
		Stages: StageTimings{
			{Name: "poisson", Duration: 30 * time.Millisecond},
			{Name: "flatten", Duration: 20 * time.Millisecond},
		},
		Total: 3 * time.Second,
	}
	logger.Info("job finished", JobField(m))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	job, ok := entries[0].ContextMap()["job"].(map[string]interface{})
	if !ok {
		t.Fatalf("job field = %T, want an object", entries[0].ContextMap()["job"])
	}
	if job["job_id"] != "job-1" || job["seed"] != int64(77) || job["retried"] != true {
		t.Errorf("job = %v", job)
	}
	if job["post_ms"] != float64(50) {
		t.Errorf("post_ms = %v, want 50", job["post_ms"])
	}
	stages, ok := job["stages"].([]interface{})
	if !ok || len(stages) != 2 {
		t.Fatalf("stages = %v", job["stages"])
	}
	if first := stages[0].(map[string]interface{}); first["name"] != "poisson" {
		t.Errorf("first stage = %v", first)
	}
}

func TestStageTimingsTotal(t *testing.T) {
	var empty StageTimings
	if empty.Total() != 0 {
		t.Errorf("empty Total() = %v", empty.Total())
	}

	ts := StageTimings{{"a", time.Second}, {"b", 2 * time.Second}}
	if ts.Total() != 3*time.Second {
		t.Errorf("Total() = %v, want 3s", ts.Total())
	}
}
