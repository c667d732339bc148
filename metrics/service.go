package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the collectors.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PointsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tournament_points_recorded_total",
			Help: "Rally points recorded, by tournament format.",
		}, []string{"format"}),
		MatchesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tournament_matches_completed_total",
			Help: "Matches completed by play, walkover or bye.",
		}, []string{"format"}),
		StageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tournament_stage_transitions_total",
			Help: "Tournament stage changes.",
		}, []string{"from", "to"}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tournament_operation_warnings_total",
			Help: "Operations rejected because a precondition did not hold.",
		}, []string{"op"}),
		VersionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_version_conflicts_total",
			Help: "Writes rejected by optimistic concurrency.",
		}),
		ArchiveUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tournament_archive_uploads_total",
			Help: "Archive snapshot uploads, by codec and result.",
		}, []string{"codec", "result"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tournament_operation_duration_seconds",
			Help:    "Duration of load, engine call and save for a tournament operation.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
	}

	reg.MustRegister(
		s.PointsRecorded,
		s.MatchesCompleted,
		s.StageTransitions,
		s.Warnings,
		s.VersionConflicts,
		s.ArchiveUploads,
		s.OperationDuration,
	)

	return s
}

func (s *Service) IncPointsRecorded(format string) {
	s.PointsRecorded.WithLabelValues(format).Inc()
}

func (s *Service) IncMatchesCompleted(format string, n int) {
	if n > 0 {
		s.MatchesCompleted.WithLabelValues(format).Add(float64(n))
	}
}

func (s *Service) IncStageTransition(from, to string) {
	s.StageTransitions.WithLabelValues(from, to).Inc()
}

func (s *Service) IncWarning(op string) {
	s.Warnings.WithLabelValues(op).Inc()
}

func (s *Service) IncVersionConflict() {
	s.VersionConflicts.Inc()
}

func (s *Service) IncArchiveUpload(codec string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	s.ArchiveUploads.WithLabelValues(codec, result).Inc()
}

func (s *Service) ObserveOperationDuration(op string, seconds float64) {
	s.OperationDuration.WithLabelValues(op).Observe(seconds)
}
