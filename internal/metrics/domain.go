package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourceUploads counts per-service source uploads by result
	// (uploaded, failed, skipped).
	SourceUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchbox_source_uploads_total",
			Help: "Source archive uploads by result",
		},
		[]string{"result"},
	)

	ScheduleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchbox_schedule_transitions_total",
			Help: "Status transitions applied by the schedule sweep",
		},
		[]string{"to"},
	)

	PushEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchbox_push_events_total",
			Help: "Push notifications by outcome",
		},
		[]string{"outcome"},
	)

	EnvironmentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "branchbox_environments_created_total",
			Help: "Environments submitted to the provisioning backend",
		},
	)
)
