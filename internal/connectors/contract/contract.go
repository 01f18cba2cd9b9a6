// Package contract holds reusable contract checks every connector must pass.
package contract

import (
	"context"
	"strings"
	"testing"

	"dsar/internal/connectors"
	"dsar/internal/discovery/models"
	"dsar/internal/discovery/ports"
	"dsar/internal/discovery/queryspec"
)

// ContractTest defines a test case for connector contract validation
type ContractTest struct {
	Name          string
	Connector     ports.Connector
	Source        models.SourceConfig
	Spec          queryspec.QuerySpec
	ExpectSuccess bool
	ValidateFunc  func(result *models.CollectionResult) error
}

// ContractSuite is a collection of contract tests for a connector
type ContractSuite struct {
	Provider string
	Tests    []ContractTest
}

// Run executes all contract tests in the suite. Expected failures must come
// back as Success=false with an error message, never as a Go error, and no
// message may echo a subject identifier.
func (s *ContractSuite) Run(t *testing.T) {
	for _, test := range s.Tests {
		t.Run(test.Name, func(t *testing.T) {
			result, err := test.Connector.CollectData(context.Background(), test.Source, test.Source.Secret, test.Spec)
			if err != nil {
				t.Fatalf("%s: expected failures must not be returned as errors: %v", s.Provider, err)
			}
			if result == nil {
				t.Fatal("nil result without error")
			}

			if result.Success != test.ExpectSuccess {
				t.Errorf("expected success=%v, got %v (error %q)", test.ExpectSuccess, result.Success, result.Error)
			}
			if !result.Success && result.Error == "" {
				t.Error("failed result carries no error message")
			}
			if result.RecordsFound < len(result.Documents) {
				t.Errorf("recordsFound %d is below the %d documents returned", result.RecordsFound, len(result.Documents))
			}
			for _, doc := range result.Documents {
				if doc.Location == "" {
					t.Error("document without location")
				}
			}
			for _, v := range test.Spec.Values() {
				if v != "" && strings.Contains(result.Error, v) {
					t.Errorf("error message leaks a subject identifier")
				}
			}

			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(result); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

// ErrorContractTest validates that unexpected connector errors follow the taxonomy
type ErrorContractTest struct {
	Name          string
	Connector     ports.Connector
	Source        models.SourceConfig
	Spec          queryspec.QuerySpec
	ExpectedError connectors.ErrorCategory
	ExpectedRetry bool
}

// Run executes an error contract test
func (ect *ErrorContractTest) Run(t *testing.T) {
	_, err := ect.Connector.CollectData(context.Background(), ect.Source, ect.Source.Secret, ect.Spec)
	if err == nil {
		t.Fatal("expected error but got none")
	}

	if category := connectors.GetCategory(err); category != ect.ExpectedError {
		t.Errorf("expected error category %s, got %s", ect.ExpectedError, category)
	}
	if retry := connectors.IsRetryable(err); retry != ect.ExpectedRetry {
		t.Errorf("expected retryable=%v, got %v", ect.ExpectedRetry, retry)
	}
}
