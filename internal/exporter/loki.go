// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/correlator/internal/models"
)

const backendLoki = "loki"

// LokiStream is one label set and its [timestamp_ns, line] entries.
type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// LokiPushRequest is the /loki/api/v1/push payload.
type LokiPushRequest struct {
	Streams []LokiStream `json:"streams"`
}

// LokiExporter pushes log batches to Loki.
type LokiExporter struct {
	url string
	t   *transport
	now func() time.Time
}

// NewLokiExporter creates an exporter posting to the Loki push URL.
func NewLokiExporter(url string, opts Options) *LokiExporter {
	return &LokiExporter{
		url: url,
		t:   newTransport(backendLoki, opts),
		now: time.Now,
	}
}

// Export pushes batch. Failures are logged and swallowed.
func (e *LokiExporter) Export(ctx context.Context, batch models.LogBatch) {
	_ = e.export(ctx, batch)
}

func (e *LokiExporter) export(ctx context.Context, batch models.LogBatch) error {
	if batch.Len() == 0 {
		return nil
	}
	req, err := e.buildPushRequest(&batch)
	if err != nil {
		return err
	}
	return e.t.deliver(ctx, batch.Len(), func(ctx context.Context) error {
		return e.t.post(ctx, e.url, nil, req)
	})
}

// buildPushRequest groups records by their stream labels. Streams appear in the
// order their first record does and keep record order.
func (e *LokiExporter) buildPushRequest(batch *models.LogBatch) (*LokiPushRequest, error) {
	req := &LokiPushRequest{}
	index := make(map[string]int)

	for i := range batch.Records {
		record := &batch.Records[i]
		labels := batch.StreamLabels(record)

		line, err := json.Marshal(record.Fields())
		if err != nil {
			return nil, fmt.Errorf("encode loki line: %w", err)
		}
		entry := []string{e.timestampNanos(record.Timestamp), string(line)}

		key := labelKey(labels)
		pos, ok := index[key]
		if !ok {
			pos = len(req.Streams)
			index[key] = pos
			req.Streams = append(req.Streams, LokiStream{Stream: labels})
		}
		req.Streams[pos].Values = append(req.Streams[pos].Values, entry)
	}
	return req, nil
}

// timestampNanos converts an ISO-8601 timestamp to Unix nanoseconds, falling
// back to now when it does not parse.
func (e *LokiExporter) timestampNanos(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		t = e.now()
	}
	return strconv.FormatInt(t.UnixNano(), 10)
}

// Status returns the breaker snapshot.
func (e *LokiExporter) Status() BreakerStatus {
	return e.t.status()
}

// Close releases idle connections.
func (e *LokiExporter) Close(context.Context) error {
	return e.t.close()
}

func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(labels[k]))
		b.WriteByte(',')
	}
	return b.String()
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Unix nanoseconds fit in an int64 only between these two instants.
var (
	minTimestamp = time.Unix(0, math.MinInt64)
	maxTimestamp = time.Unix(0, math.MaxInt64)
)

// parseTimestamp parses ts and reports false when it is empty, malformed or
// outside the range Unix nanoseconds can represent.
func parseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, ts)
		if err != nil {
			continue
		}
		if t.Before(minTimestamp) || t.After(maxTimestamp) {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}
