// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tomtom215/correlator/internal/models"
)

// OTLP/HTTP JSON trace payload. Field names follow the protobuf JSON mapping.

// TraceRequest is an ExportTraceServiceRequest.
type TraceRequest struct {
	ResourceSpans []ResourceSpans `json:"resourceSpans"`
}

// ResourceSpans groups spans emitted by one resource.
type ResourceSpans struct {
	Resource   OTLPResource `json:"resource"`
	ScopeSpans []ScopeSpans `json:"scopeSpans"`
}

// OTLPResource describes the emitting service.
type OTLPResource struct {
	Attributes []KeyValue `json:"attributes"`
}

// ScopeSpans groups spans by instrumentation scope.
type ScopeSpans struct {
	Scope Scope  `json:"scope"`
	Spans []Span `json:"spans"`
}

// Scope is the instrumentation scope.
type Scope struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Span is one OTLP span. Timestamps are Unix nanoseconds as decimal strings.
type Span struct {
	TraceID           string     `json:"traceId"`
	SpanID            string     `json:"spanId"`
	ParentSpanID      string     `json:"parentSpanId,omitempty"`
	Name              string     `json:"name"`
	Kind              int        `json:"kind"`
	StartTimeUnixNano string     `json:"startTimeUnixNano"`
	EndTimeUnixNano   string     `json:"endTimeUnixNano"`
	Attributes        []KeyValue `json:"attributes,omitempty"`
	Links             []Link     `json:"links,omitempty"`
}

// Link references another span.
type Link struct {
	TraceID    string     `json:"traceId"`
	SpanID     string     `json:"spanId"`
	Attributes []KeyValue `json:"attributes,omitempty"`
}

// KeyValue is a typed attribute.
type KeyValue struct {
	Key   string   `json:"key"`
	Value AnyValue `json:"value"`
}

// AnyValue holds exactly one typed value. intValue is a string per the
// protobuf JSON mapping of int64.
type AnyValue struct {
	StringValue *string  `json:"stringValue,omitempty"`
	IntValue    *string  `json:"intValue,omitempty"`
	BoolValue   *bool    `json:"boolValue,omitempty"`
	DoubleValue *float64 `json:"doubleValue,omitempty"`
}

// SpanCount returns the number of spans in the request.
func (r *TraceRequest) SpanCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.ResourceSpans {
		for j := range r.ResourceSpans[i].ScopeSpans {
			n += len(r.ResourceSpans[i].ScopeSpans[j].Spans)
		}
	}
	return n
}

const (
	spanKindInternal = 1
	scopeName        = "github.com/tomtom215/correlator"
)

func newTraceRequest(service string, spans ...Span) *TraceRequest {
	return &TraceRequest{
		ResourceSpans: []ResourceSpans{{
			Resource: OTLPResource{Attributes: []KeyValue{stringKV("service.name", service)}},
			ScopeSpans: []ScopeSpans{{
				Scope: Scope{Name: scopeName},
				Spans: spans,
			}},
		}},
	}
}

func stringKV(key, value string) KeyValue {
	return KeyValue{Key: key, Value: AnyValue{StringValue: &value}}
}

// toKeyValue converts a Go value to a typed attribute. Unknown types are
// rendered with fmt.
func toKeyValue(key string, value any) KeyValue {
	var v AnyValue
	switch x := value.(type) {
	case string:
		v.StringValue = &x
	case bool:
		v.BoolValue = &x
	case int:
		v.IntValue = intString(int64(x))
	case int32:
		v.IntValue = intString(int64(x))
	case int64:
		v.IntValue = intString(x)
	case uint32:
		v.IntValue = intString(int64(x))
	case float32:
		f := float64(x)
		v.DoubleValue = &f
	case float64:
		v.DoubleValue = &x
	case time.Time:
		s := x.UTC().Format(time.RFC3339Nano)
		v.StringValue = &s
	default:
		s := fmt.Sprint(x)
		v.StringValue = &s
	}
	return KeyValue{Key: key, Value: v}
}

func intString(n int64) *string {
	s := strconv.FormatInt(n, 10)
	return &s
}

func attributesFromList(attrs []models.Attribute) []KeyValue {
	out := make([]KeyValue, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, toKeyValue(a.Key, a.Value))
	}
	return out
}

// attributesFromMap converts a map with keys in sorted order.
func attributesFromMap(attrs map[string]any) []KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, toKeyValue(k, attrs[k]))
	}
	return out
}

func unixNanos(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

// NormalizeTraceID returns raw as a 32 character lowercase hex trace id.
// Hyphens are ignored, short hex is left-padded with zeros and long hex is
// truncated. Input that is not hex, or is all zeros, is replaced by the first
// 16 bytes of sha256(seed).
func NormalizeTraceID(raw, seed string) string {
	if h, ok := cleanHex(raw); ok {
		if id, err := trace.TraceIDFromHex(fitWidth(h, 32)); err == nil {
			return id.String()
		}
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:16])
}

// NormalizeSpanID returns raw as a 16 character lowercase hex span id, with
// the same rules as NormalizeTraceID. The fallback is bytes 16..24 of
// sha256(seed).
func NormalizeSpanID(raw, seed string) string {
	if h, ok := cleanHex(raw); ok {
		if id, err := trace.SpanIDFromHex(fitWidth(h, 16)); err == nil {
			return id.String()
		}
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[16:24])
}

func cleanHex(raw string) (string, bool) {
	h := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "-", ""))
	if h == "" {
		return "", false
	}
	for _, r := range h {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", false
		}
	}
	return h, true
}

func fitWidth(h string, width int) string {
	if len(h) >= width {
		return h[:width]
	}
	return strings.Repeat("0", width-len(h)) + h
}
