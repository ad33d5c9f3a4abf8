package common

type contextKey string

const (
	TraceIdKey         contextKey = "trace_id"
	SecurityContextKey contextKey = "security_context"
	IdentityHashKey    contextKey = "identity_hash"
	RateLimitResultKey contextKey = "rate_limit_result"
	LatencyContextKey  contextKey = "__execution_time"
)
