package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ApplicationMetrics tracks Trailium domain events
type ApplicationMetrics struct {
	// Social engagement
	PostsCreated      *prometheus.CounterVec
	LikesTotal        *prometheus.CounterVec
	CommentsTotal     *prometheus.CounterVec
	FollowTransitions *prometheus.CounterVec

	// Todos
	TodoProgressRecalculations *prometheus.CounterVec

	// Auth
	LoginAttempts *prometheus.CounterVec

	// Validation metrics
	ValidationFailures *prometheus.CounterVec

	// Admin tools
	PurgeRuns *prometheus.CounterVec
}

func newApplicationMetrics() *ApplicationMetrics {
	return &ApplicationMetrics{
		PostsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_posts_created_total",
				Help: "Total number of posts created",
			},
			[]string{"visibility"},
		),
		LikesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_likes_total",
				Help: "Total number of like and unlike actions",
			},
			[]string{"action"},
		),
		CommentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_comments_total",
				Help: "Total number of comments created",
			},
			[]string{},
		),
		FollowTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_follow_transitions_total",
				Help: "Follow request state transitions",
			},
			[]string{"transition"},
		),
		TodoProgressRecalculations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_todo_progress_recalculations_total",
				Help: "Todo progress cache recalculations",
			},
			[]string{"kind"},
		),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ValidationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_validation_failures_total",
				Help: "Total validation failures",
			},
			[]string{"field", "reason"},
		),
		PurgeRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trailium_purge_runs_total",
				Help: "Non-admin purge runs by mode",
			},
			[]string{"mode"},
		),
	}
}
