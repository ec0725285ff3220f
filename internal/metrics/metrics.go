// Package metrics exposes Prometheus instrumentation for the table and
// tournament engines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pokerserver/internal/table"
)

var (
	HandsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_hands_started_total",
		Help: "Total number of hands started, per table",
	}, []string{"table_id"})

	HandsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_hands_completed_total",
		Help: "Total number of hands completed, by win type",
	}, []string{"table_id", "win_type"})

	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_actions_total",
		Help: "Total number of player actions processed, per table and command",
	}, []string{"table_id", "command"})

	ActionTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_action_timeouts_total",
		Help: "Total number of actions resolved by the auto-fold/auto-check timer",
	}, []string{"table_id"})

	ActiveTables = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_active_tables",
		Help: "Number of tables currently tracked by the table manager",
	})

	ConnectedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_connected_sessions",
		Help: "Number of live websocket sessions",
	})

	MessageHandleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poker_message_handle_duration_seconds",
		Help:    "Time spent handling one inbound session message",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	TournamentsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_tournaments_active",
		Help: "Number of tournaments not yet finished or cancelled",
	})

	TournamentEliminations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_tournament_eliminations_total",
		Help: "Total number of tournament player eliminations, per mode",
	}, []string{"mode"})
)

// Recorder adapts the package-level counters to the table package's
// narrow Recorder interface.
type Recorder struct{}

func NewRecorder() Recorder { return Recorder{} }

func (Recorder) RecordHandStarted(tableID string) {
	HandsStarted.WithLabelValues(tableID).Inc()
}

func (Recorder) RecordHandComplete(tableID, winType string) {
	HandsCompleted.WithLabelValues(tableID, winType).Inc()
}

func (Recorder) RecordAction(tableID string, command table.Command) {
	ActionsTotal.WithLabelValues(tableID, string(command)).Inc()
}

func (Recorder) RecordActionTimeout(tableID string) {
	ActionTimeouts.WithLabelValues(tableID).Inc()
}
