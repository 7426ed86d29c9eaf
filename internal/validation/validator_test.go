// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Shared(t *testing.T) {
	if v := GetValidator(); v == nil || v != GetValidator() {
		t.Fatal("GetValidator() must return one shared instance")
	}
}

type testBackend struct {
	URL     string `validate:"required,httpurl"`
	Retries int    `validate:"gte=1,lte=10"`
}

type testConfig struct {
	Name    string `validate:"required,min=1,max=20"`
	Product string `validate:"omitempty,product"`
	Format  string `validate:"omitempty,oneof=json console"`
	Backend testBackend
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input testConfig
	}{
		{
			name: "all fields",
			input: testConfig{
				Name:    "correlator",
				Format:  "json",
				Backend: testBackend{URL: "http://loki:3100/loki/api/v1/push", Retries: 3},
			},
		},
		{
			name: "optional format omitted",
			input: testConfig{
				Name:    "c",
				Backend: testBackend{URL: "https://tempo:4318", Retries: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	valid := testConfig{
		Name:    "correlator",
		Backend: testBackend{URL: "http://loki:3100", Retries: 3},
	}

	tests := []struct {
		name      string
		mutate    func(c *testConfig)
		wantField string
		wantTag   string
	}{
		{"missing name", func(c *testConfig) { c.Name = "" }, "Name", "required"},
		{"bad format", func(c *testConfig) { c.Format = "xml" }, "Format", "oneof"},
		{"relative url", func(c *testConfig) { c.Backend.URL = "/loki/api/v1/push" }, "Backend.URL", "httpurl"},
		{"ftp url", func(c *testConfig) { c.Backend.URL = "ftp://loki" }, "Backend.URL", "httpurl"},
		{"retries too high", func(c *testConfig) { c.Backend.Retries = 11 }, "Backend.Retries", "lte"},
		{"retries too low", func(c *testConfig) { c.Backend.Retries = 0 }, "Backend.Retries", "gte"},
		{"name too long", func(c *testConfig) { c.Name = strings.Repeat("n", 21) }, "Name", "max"},
		{"product with space", func(c *testConfig) { c.Product = "SDWAN Circuit" }, "Product", "product"},
		{"product with ampersand", func(c *testConfig) { c.Product = "dia&x=1" }, "Product", "product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			verr := ValidateStruct(&cfg)
			if verr == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cfg := testConfig{Backend: testBackend{URL: "nope", Retries: 3}}

	verr := ValidateStruct(&cfg)
	if verr == nil {
		t.Fatal("expected error")
	}

	msg := verr.Error()
	for _, want := range []string{"Name is required", "Backend.URL must be an absolute http or https URL"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	cfg := testConfig{Name: "ok", Backend: testBackend{URL: "http://x", Retries: 0}}

	apiErr := ValidateStruct(&cfg).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "Backend.Retries" {
		t.Errorf("Details[field] = %v, want Backend.Retries", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	cfg := testConfig{Backend: testBackend{URL: "", Retries: 0}}

	apiErr := ValidateStruct(&cfg).ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]any)
	if !ok {
		t.Fatalf("expected fields detail, got %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(fields))
	}
	if !strings.Contains(apiErr.Message, "Name: Name is required") {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&Errors{}).ToAPIError()
	if apiErr.Message != "Validation failed" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestErrorMessages_Length(t *testing.T) {
	cfg := testConfig{Name: strings.Repeat("n", 21), Backend: testBackend{URL: "http://x", Retries: 3}}

	verr := ValidateStruct(&cfg)
	if verr == nil {
		t.Fatal("expected error")
	}
	if got, want := verr.Error(), "Name must be at most 20 characters"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if p := verr.Errors()[0].Param(); p != "20" {
		t.Errorf("Param() = %q, want 20", p)
	}
}

func TestValidateStruct_ProductNames(t *testing.T) {
	for _, p := range []string{"dia", "SDWAN.Circuit", "mpls-l3_vpn"} {
		cfg := testConfig{Name: "ok", Product: p, Backend: testBackend{URL: "http://x", Retries: 1}}
		if verr := ValidateStruct(&cfg); verr != nil {
			t.Errorf("product %q rejected: %v", p, verr)
		}
	}
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	verr := ValidateStruct(42)
	if verr == nil {
		t.Fatal("expected error for non-struct input")
	}
	if got := verr.Errors()[0].Tag(); got != "struct" {
		t.Errorf("Tag() = %q, want struct", got)
	}
}
