package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecochat_tool_calls_total", Help: "Tool invocations by tool name and result status.",
	}, []string{"tool", "status"})
	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecochat_tool_duration_seconds",
		Help:    "Tool execution latency.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"tool"})

	ChatResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecochat_chat_responses_total", Help: "Chat responses by answering source.",
	}, []string{"source"})
	AgentFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecochat_agent_fallbacks_total", Help: "Agent failures that fell back to direct tool calls.",
	}, []string{"reason"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecochat_llm_requests_total", Help: "Narrative completion requests by provider and outcome.",
	}, []string{"provider", "outcome"})
	NarrativeCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecochat_narrative_cache_total", Help: "Narrative cache lookups by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecochat_http_requests_total", Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecochat_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
