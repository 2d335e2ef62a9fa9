// Package metrics defines the gateway's metric names and tag conventions.
package metrics

import (
	"errors"
	"reflect"
	"strings"
	"time"

	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// BackendCall captures one outbound dispatch API call.
type BackendCall struct {
	Op       string
	Result   string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitBackendCall emits a counter and a timer for a backend call.
func EmitBackendCall(sink statsd.Sink, in BackendCall) {
	if sink == nil {
		return
	}
	tags := map[string]string{"op": in.Op, "result": in.Result}
	if in.Status > 0 {
		tags["status_class"] = statusClass(in.Status)
	}
	if in.Err != nil && in.Result == ResultError {
		tags["error_class"] = Classify(in.Err)
	}
	sink.Count("backend.call", 1, tags)
	if in.Duration > 0 {
		sink.Timing("backend.duration", in.Duration, map[string]string{"op": in.Op})
	}
}

// EmitDegradedRead counts a read endpoint that served its fallback value.
func EmitDegradedRead(sink statsd.Sink, endpoint string, err error) {
	if sink == nil {
		return
	}
	sink.Count("api.read_degraded", 1, map[string]string{"endpoint": endpoint, "error_class": Classify(err)})
}

// EmitWriteFailure counts a write endpoint that propagated a backend failure.
func EmitWriteFailure(sink statsd.Sink, endpoint string, err error) {
	if sink == nil {
		return
	}
	sink.Count("api.write_failed", 1, map[string]string{"endpoint": endpoint, "error_class": Classify(err)})
}

// EmitSessionResolution counts resolver outcomes (success or the failure code).
func EmitSessionResolution(sink statsd.Sink, mode string, err error) {
	if sink == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = Classify(err)
	}
	sink.Count("session.resolve", 1, map[string]string{"mode": mode, "result": result})
}

// EmitAccessDenied counts requests rejected by the capability gate.
func EmitAccessDenied(sink statsd.Sink, endpoint, reason string) {
	if sink == nil {
		return
	}
	sink.Count("api.denied", 1, map[string]string{"endpoint": endpoint, "reason": reason})
}

// Classify returns a normalized error class for tagging. AppErrors report their
// code; other errors report the innermost concrete type name in snake-ish form.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
