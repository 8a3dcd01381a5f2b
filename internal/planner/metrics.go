package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	planGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrio_plan_generations_total",
			Help: "Generated meal plans by kind (week, day, regenerate) and source (ai, fallback)",
		},
		[]string{"kind", "source"},
	)

	aiFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrio_ai_failures_total",
			Help: "AI path failures recovered by the fallback generator",
		},
		[]string{"reason"},
	)
)
