package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generations counts result-set generations started by FetchResults.
	Generations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_controller_generations_total",
			Help: "Total number of result-set generations started",
		},
	)

	// StaleResults counts responses discarded because a newer generation exists.
	StaleResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_controller_stale_results_total",
			Help: "Responses discarded because a newer fetch superseded them",
		},
		[]string{"stage"}, // "results", "episode"
	)

	// FetchErrors counts failed upstream fetches by stage.
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_controller_fetch_errors_total",
			Help: "Failed primary and episode fetches",
		},
		[]string{"stage"},
	)

	// EpisodeResolutions counts first-episode lookups by outcome.
	EpisodeResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_episode_resolutions_total",
			Help: "First-episode name lookups by outcome",
		},
		[]string{"outcome"}, // "resolved", "failed", "no_episode"
	)
)

const (
	stageResults = "results"
	stageEpisode = "episode"

	outcomeResolved  = "resolved"
	outcomeFailed    = "failed"
	outcomeNoEpisode = "no_episode"
)
