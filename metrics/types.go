package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is what the services record. Tests may pass a Service built on a
// private registry.
type Metrics interface {
	IncPointsRecorded(format string)
	IncMatchesCompleted(format string, n int)
	IncStageTransition(from, to string)
	IncWarning(op string)
	IncVersionConflict()
	IncArchiveUpload(codec string, ok bool)
	ObserveOperationDuration(op string, seconds float64)
}

// Service holds all the Prometheus collectors of the server.
type Service struct {
	PointsRecorded    *prometheus.CounterVec
	MatchesCompleted  *prometheus.CounterVec
	StageTransitions  *prometheus.CounterVec
	Warnings          *prometheus.CounterVec
	VersionConflicts  prometheus.Counter
	ArchiveUploads    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}
