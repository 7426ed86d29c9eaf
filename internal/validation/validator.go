// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/correlator/internal/models"
)

// CodeValidation is the API error code for rejected input.
const CodeValidation = "VALIDATION_ERROR"

var (
	instance *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator. The first call registers the
// correlator's custom rules.
func GetValidator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		if err := v.RegisterValidation("httpurl", isHTTPURL); err != nil {
			panic(fmt.Sprintf("validation: register httpurl: %v", err))
		}
		if err := v.RegisterValidation("product", isProductType); err != nil {
			panic(fmt.Sprintf("validation: register product: %v", err))
		}
		instance = v
	})
	return instance
}

// isHTTPURL accepts absolute http(s) URLs with a host. A path is allowed
// since push endpoints carry one.
func isHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// isProductType accepts orchestration product type names: letters, digits,
// dot, dash and underscore. They end up in query strings and Loki labels.
func isProductType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// Violation is a single failed rule.
type Violation struct {
	field   string
	tag     string
	param   string
	value   any
	message string
}

// Field is the dotted path below the root struct, e.g. "Exporters.LokiURL".
func (v Violation) Field() string { return v.field }

// Tag is the rule that failed.
func (v Violation) Tag() string { return v.tag }

// Param is the rule argument ("168" for lte=168).
func (v Violation) Param() string { return v.param }

// Value is the rejected value.
func (v Violation) Value() any { return v.value }

func (v Violation) Error() string { return v.message }

func (v Violation) detail() map[string]any {
	d := map[string]any{"field": v.field, "tag": v.tag, "message": v.message}
	if v.param != "" {
		d["param"] = v.param
	}
	return d
}

// Errors is everything ValidateStruct rejected, in field order.
type Errors struct {
	violations []Violation
}

// Errors returns the individual violations.
func (e *Errors) Errors() []Violation { return e.violations }

func (e *Errors) Error() string {
	if len(e.violations) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	for i, v := range e.violations {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(v.message)
	}
	return b.String()
}

// ToAPIError renders the violations as a VALIDATION_ERROR body. A single
// violation is flattened into the details; several are listed under "fields".
func (e *Errors) ToAPIError() *models.APIError {
	apiErr := &models.APIError{Code: CodeValidation, Message: "Validation failed"}

	switch len(e.violations) {
	case 0:
	case 1:
		v := e.violations[0]
		apiErr.Message = v.message
		apiErr.Details = v.detail()
	default:
		fields := make([]map[string]any, 0, len(e.violations))
		parts := make([]string, 0, len(e.violations))
		for _, v := range e.violations {
			fields = append(fields, v.detail())
			parts = append(parts, v.field+": "+v.message)
		}
		apiErr.Message = strings.Join(parts, "; ")
		apiErr.Details = map[string]any{"fields": fields}
	}
	return apiErr
}

// ValidateStruct runs the struct-tag rules on s. It returns nil when s is
// valid.
//
//	if verr := validation.ValidateStruct(cfg); verr != nil {
//		return fmt.Errorf("invalid configuration: %w", verr)
//	}
func ValidateStruct(s any) *Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: s was not a struct.
		return &Errors{violations: []Violation{{
			field:   reflect.TypeOf(s).String(),
			tag:     "struct",
			message: err.Error(),
		}}}
	}

	out := &Errors{violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		path := fieldPath(fe.StructNamespace())
		out.violations = append(out.violations, Violation{
			field:   path,
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: describe(fe, path),
		})
	}
	return out
}

// fieldPath strips the root type: "Config.Exporters.LokiURL" becomes
// "Exporters.LokiURL".
func fieldPath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	return rest
}

// describe renders a failed rule as a sentence about the field.
func describe(fe validator.FieldError, path string) string {
	p := fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "httpurl":
		return path + " must be an absolute http or https URL"
	case "product":
		return path + " may only contain letters, digits, '.', '-' and '_'"
	case "url":
		return path + " must be a valid URL"
	case "hostname":
		return path + " must be a valid hostname"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", path, p)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", path, p, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", path, p, unit)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", path, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", path, p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", path, p)
	}
	return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
}
