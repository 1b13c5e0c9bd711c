package ports

// MetricsRecorder receives scoring and recognition outcomes.
type MetricsRecorder interface {
	RecordScore(score int, passed bool)
	// RecordRecognition counts recognition passes by status: "ok",
	// "no_result", "unavailable" or "error".
	RecordRecognition(status string)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) RecordScore(int, bool)    {}
func (NopMetrics) RecordRecognition(string) {}
