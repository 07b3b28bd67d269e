// ABOUTME: Admin rules resource: list, performance, statistics, enable toggle and reload
// ABOUTME: The client only reads rules and flips their enabled flag

package api

import (
	"context"
	"net/url"
)

// Rule is a local review rule.
type Rule struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type,omitempty"`
	RuleType    string   `json:"rule_type,omitempty"`
	Category    string   `json:"category"`
	Enabled     bool     `json:"enabled"`
	Priority    int      `json:"priority"`
	Critical    bool     `json:"critical,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	MinLength   *int     `json:"min_length,omitempty"`
	MaxLength   *int     `json:"max_length,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Kind returns the rule type whichever field the server used.
func (r Rule) Kind() string {
	if r.Type != "" {
		return r.Type
	}
	return r.RuleType
}

// RuleList is returned by GET /admin/rules/list.
type RuleList struct {
	TotalRules    int    `json:"total_rules"`
	EnabledRules  int    `json:"enabled_rules"`
	DisabledRules int    `json:"disabled_rules"`
	Rules         []Rule `json:"rules"`
}

// RulePerformance is the timing record of one rule.
type RulePerformance struct {
	RuleID         string  `json:"rule_id"`
	RuleName       string  `json:"rule_name"`
	ExecutionCount int     `json:"execution_count"`
	TotalTime      float64 `json:"total_time"`
	AverageTime    float64 `json:"average_time"`
	MaxTime        float64 `json:"max_time"`
	MinTime        float64 `json:"min_time"`
	IsSlow         bool    `json:"is_slow,omitempty"`
}

// PerformanceReport is returned by GET /admin/rules/performance.
type PerformanceReport struct {
	TotalValidations     int               `json:"total_validations"`
	TotalExecutionTime   float64           `json:"total_execution_time"`
	AverageExecutionTime float64           `json:"average_execution_time"`
	RuleMetrics          []RulePerformance `json:"rule_metrics"`
	SlowRules            []map[string]any  `json:"slow_rules"`
}

// RuleStatistics is returned by GET /admin/rules/statistics.
type RuleStatistics struct {
	TotalRules      int                       `json:"total_rules"`
	EnabledRules    int                       `json:"enabled_rules"`
	DisabledRules   int                       `json:"disabled_rules"`
	RulesByCategory map[string]map[string]int `json:"rules_by_category"`
	ConfigInfo      map[string]any            `json:"config_info,omitempty"`
}

type RulesAPI struct {
	c requester
}

func (r *RulesAPI) List(ctx context.Context) (*RuleList, error) {
	var out RuleList
	if err := r.c.Get(ctx, "/admin/rules/list", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RulesAPI) Performance(ctx context.Context) (*PerformanceReport, error) {
	var out PerformanceReport
	if err := r.c.Get(ctx, "/admin/rules/performance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RulesAPI) Statistics(ctx context.Context) (*RuleStatistics, error) {
	var out RuleStatistics
	if err := r.c.Get(ctx, "/admin/rules/statistics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Toggle enables or disables a rule.
func (r *RulesAPI) Toggle(ctx context.Context, ruleID string, enabled bool) (*Message, error) {
	var out Message
	path := "/admin/rules/" + url.PathEscape(ruleID) + "/toggle"
	if err := r.c.Put(ctx, path, map[string]bool{"enabled": enabled}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reload makes the backend re-read its rule configuration.
func (r *RulesAPI) Reload(ctx context.Context) (*Message, error) {
	var out Message
	if err := r.c.Post(ctx, "/admin/rules/reload", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
