// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/correlator/internal/models"
)

const backendDatadog = "datadog"

// DatadogSettings identifies the Datadog intake and the tags stamped on logs.
type DatadogSettings struct {
	APIKey  string
	Site    string
	URL     string // overrides the site-derived intake URL
	Service string
	Env     string
	Host    string
}

// DatadogExporter dual-writes logs to the Datadog HTTP intake. It does nothing
// when no API key is configured.
type DatadogExporter struct {
	settings DatadogSettings
	url      string
	t        *transport
	now      func() time.Time
}

// NewDatadogExporter creates a Datadog exporter.
func NewDatadogExporter(settings DatadogSettings, opts Options) *DatadogExporter {
	url := settings.URL
	if url == "" {
		site := settings.Site
		if site == "" {
			site = "datadoghq.com"
		}
		url = "https://http-intake.logs." + site + "/v1/input"
	}
	return &DatadogExporter{
		settings: settings,
		url:      url,
		t:        newTransport(backendDatadog, opts),
		now:      time.Now,
	}
}

// Enabled reports whether an API key is configured.
func (e *DatadogExporter) Enabled() bool {
	return e.settings.APIKey != ""
}

// Export posts batch to the intake. Failures are logged and swallowed.
func (e *DatadogExporter) Export(ctx context.Context, batch models.LogBatch) {
	_ = e.export(ctx, batch)
}

func (e *DatadogExporter) export(ctx context.Context, batch models.LogBatch) error {
	if !e.Enabled() || batch.Len() == 0 {
		return nil
	}
	payload := e.buildPayload(&batch)
	headers := map[string]string{"DD-API-KEY": e.settings.APIKey}
	return e.t.deliver(ctx, len(payload), func(ctx context.Context) error {
		return e.t.post(ctx, e.url, headers, payload)
	})
}

// Keys of LogRecord.Fields that map to dedicated intake attributes.
var datadogReserved = map[string]bool{
	"timestamp": true,
	"severity":  true,
	"message":   true,
	"trace_id":  true,
	"span_id":   true,
}

func (e *DatadogExporter) buildPayload(batch *models.LogBatch) []map[string]any {
	service := batch.Resource.Service
	if service == "" {
		service = e.settings.Service
	}
	env := batch.Resource.Env
	if env == "" {
		env = e.settings.Env
	}
	host := batch.Resource.Host
	if host == "" {
		host = e.settings.Host
	}

	out := make([]map[string]any, 0, batch.Len())
	for i := range batch.Records {
		record := &batch.Records[i]

		entry := make(map[string]any)
		for k, v := range record.Fields() {
			if !datadogReserved[k] {
				entry[k] = v
			}
		}

		ts, ok := parseTimestamp(record.Timestamp)
		if !ok {
			ts = e.now()
		}

		entry["ddsource"] = "correlator"
		entry["ddtags"] = datadogTags(env, service, record)
		entry["hostname"] = host
		entry["service"] = service
		entry["message"] = record.Message
		entry["timestamp"] = ts.UnixMilli()
		entry["status"] = record.Severity
		if id, ok := datadogID(record.TraceID); ok {
			entry["dd.trace_id"] = id
		}
		if id, ok := datadogID(record.SpanID); ok {
			entry["dd.span_id"] = id
		}
		out = append(out, entry)
	}
	return out
}

func datadogTags(env, service string, record *models.LogRecord) string {
	tags := []string{"env:" + env, "service:" + service}
	if record.ProductID != "" {
		tags = append(tags, "product_type:"+record.ProductID)
	}
	sort.Strings(tags)
	return strings.Join(tags, ",")
}

// datadogID converts an OpenTelemetry hex id to Datadog's decimal form, which
// uses the low 64 bits.
func datadogID(hexID string) (string, bool) {
	if len(hexID) < 16 {
		return "", false
	}
	n, err := strconv.ParseUint(hexID[len(hexID)-16:], 16, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatUint(n, 10), true
}

// Status returns the breaker snapshot.
func (e *DatadogExporter) Status() BreakerStatus {
	return e.t.status()
}

// Close releases idle connections.
func (e *DatadogExporter) Close(context.Context) error {
	return e.t.close()
}
