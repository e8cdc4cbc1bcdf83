package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StageTiming is the wall time of one post-processing stage.
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s StageTiming) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", s.Name)
	enc.AddFloat64("ms", float64(s.Duration.Microseconds())/1000)
	return nil
}

// StageTimings implements zapcore.ArrayMarshaler.
type StageTimings []StageTiming

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (ts StageTimings) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, s := range ts {
		if err := enc.AppendObject(s); err != nil {
			return err
		}
	}
	return nil
}

// Total returns the summed stage time.
func (ts StageTimings) Total() time.Duration {
	var total time.Duration
	for _, s := range ts {
		total += s.Duration
	}
	return total
}

// JobMetrics summarizes one texture job for the log.
type JobMetrics struct {
	JobID    string
	Backend  string
	Width    int
	Height   int
	Seed     *int64
	Retried  bool
	Generate time.Duration
	Stages   StageTimings
	Total    time.Duration
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (m JobMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("job_id", m.JobID)
	if m.Backend != "" {
		enc.AddString("backend", m.Backend)
	}
	enc.AddInt("width", m.Width)
	enc.AddInt("height", m.Height)
	if m.Seed != nil {
		enc.AddInt64("seed", *m.Seed)
	}
	if m.Retried {
		enc.AddBool("retried", true)
	}
	if m.Generate > 0 {
		enc.AddFloat64("generate_ms", float64(m.Generate.Microseconds())/1000)
	}
	enc.AddFloat64("post_ms", float64(m.Stages.Total().Microseconds())/1000)
	enc.AddFloat64("total_ms", float64(m.Total.Microseconds())/1000)
	return enc.AddArray("stages", m.Stages)
}

// JobField returns m as a single structured "job" field.
func JobField(m JobMetrics) zap.Field {
	return zap.Object("job", m)
}
