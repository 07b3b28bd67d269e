// ABOUTME: Health resource: AI service status, fallback statistics and a liveness check
// ABOUTME: Mode is "normal" while the AI service is healthy and "fallback" otherwise

package api

import (
	"context"
)

// HealthStatus reports the AI service state as seen by the backend's monitor.
type HealthStatus struct {
	Mode                 string    `json:"mode"`
	AIServiceHealthy     bool      `json:"ai_service_healthy"`
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	ConsecutiveSuccesses int       `json:"consecutive_successes"`
	LastCheckTime        Timestamp `json:"last_check_time"`
	LastFailureTime      Timestamp `json:"last_failure_time"`
	EstimatedRecovery    *int      `json:"estimated_recovery,omitempty"`
}

// FallbackStats aggregates degradation events.
type FallbackStats struct {
	TotalChecks             int     `json:"total_checks"`
	TotalFailures           int     `json:"total_failures"`
	TotalFallbackEvents     int     `json:"total_fallback_events"`
	TotalFallbackDuration   float64 `json:"total_fallback_duration"`
	CurrentFallbackDuration *int    `json:"current_fallback_duration,omitempty"`
	FailureRate             float64 `json:"failure_rate"`
	UptimeRate              float64 `json:"uptime_rate"`
}

// Liveness is the body of GET /health/check.
type Liveness struct {
	Status    string `json:"status"`
	Mode      string `json:"mode,omitempty"`
	AIService string `json:"ai_service,omitempty"`
	Message   string `json:"message,omitempty"`
}

type HealthAPI struct {
	c requester
}

func (h *HealthAPI) Status(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := h.c.Get(ctx, "/health/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HealthAPI) FallbackStats(ctx context.Context) (*FallbackStats, error) {
	var out FallbackStats
	if err := h.c.Get(ctx, "/health/fallback-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HealthAPI) Check(ctx context.Context) (*Liveness, error) {
	var out Liveness
	if err := h.c.Get(ctx, "/health/check", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
