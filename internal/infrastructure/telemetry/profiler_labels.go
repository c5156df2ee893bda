package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
	ProfilingLabelOperation = "operation"
	ProfilingLabelRegion    = "region"
)

// MaxLabelValueLength bounds label values to keep series cardinality sane
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped from profiling labels. Per-entity ids
// belong on spans, not profiles.
var highCardinalityLabels = map[string]bool{
	"request_id":     true,
	"trace_id":       true,
	"span_id":        true,
	"actor":          true,
	"transaction_id": true,
	"return_id":      true,
	"unit_id":        true,
}

// WithProfilingLabels runs fn with pprof labels attached, so CPU samples
// taken inside fn can be filtered by label in Pyroscope.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels returns sorted key/value pairs with empty, high-cardinality
// and malformed entries removed and values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	pairs := make([]string, 0, len(labels)*2)
	for _, key := range slices.Sorted(maps.Keys(labels)) {
		value := labels[key]
		if value == "" || highCardinalityLabels[key] {
			continue
		}
		key = sanitizeLabelKey(key)
		if key == "" {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, key, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		switch c := key[i]; {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		case c == ' ' || c == '-':
			b.WriteByte('_')
		}
	}
	return b.String()
}

// HTTPRequestLabels labels a request by route template and method
func HTTPRequestLabels(route, method string) map[string]string {
	labels := make(map[string]string, 2)
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	return labels
}

// OperationLabels labels a named unit of work, such as a PDF render
func OperationLabels(operation string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	maps.Copy(labels, extra)
	labels[ProfilingLabelOperation] = operation
	return labels
}
