// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

// Package validation provides struct validation using go-playground/validator v10.
//
// It is used in two places: config.Config.Validate checks the loaded
// configuration through struct tags, and the HTTP surface validates
// POST /collect request bodies and renders failures as APIError.
//
// # Custom Validators
//
//   - httpurl: absolute http or https URL with a host
//
// # Usage
//
//	type CollectRequest struct {
//	    ProductType    string `json:"product_type" validate:"required"`
//	    TimeRangeHours int    `json:"time_range_hours" validate:"gte=0,lte=720"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondJSON(w, http.StatusBadRequest, verr.ToAPIError())
//	    return
//	}
//
// Field names in messages are struct namespaces without the root type,
// e.g. "Orchestration.BaseURL is required".
package validation
