// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/tomtom215/correlator/internal/validation"
)

// Validate checks struct-tag rules first, then the cross-field rules that tags
// cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateOrchestration(); err != nil {
		return err
	}

	if err := c.validateExporters(); err != nil {
		return err
	}

	return c.validateCollector()
}

// validateOrchestration checks TLS settings and credential placeholders
func (c *Config) validateOrchestration() error {
	o := c.Orchestration
	if o.CABundle != "" {
		if !o.VerifySSL {
			return fmt.Errorf("ORCH_CA_BUNDLE is set but ORCH_VERIFY_SSL=false")
		}
		if _, err := os.Stat(o.CABundle); err != nil {
			return fmt.Errorf("ORCH_CA_BUNDLE: %w", err)
		}
	}
	if containsPlaceholder(o.Password) {
		return fmt.Errorf("ORCH_PASSWORD contains a placeholder value, set a real password")
	}
	return nil
}

// validateExporters checks Datadog settings
func (c *Config) validateExporters() error {
	e := c.Exporters
	if e.DatadogAPIKey != "" && containsPlaceholder(e.DatadogAPIKey) {
		return fmt.Errorf("DATADOG_API_KEY contains a placeholder value")
	}
	return nil
}

// validateCollector checks that every product entry parses
func (c *Config) validateCollector() error {
	if !c.Collector.Enabled {
		return nil
	}
	products, err := c.Collector.ProductList()
	if err != nil {
		return fmt.Errorf("COLLECTOR_PRODUCTS: %w", err)
	}
	if len(products) == 0 {
		return fmt.Errorf("COLLECTOR_PRODUCTS is required when COLLECTOR_ENABLED=true")
	}
	return nil
}

// placeholderPatterns are values that indicate a credential was never filled in.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_PASSWORD",
	"YOUR_API_KEY",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
