package model

import "fmt"

// ConfigurationError indicates an invalid simulation configuration
// (unknown strategy, bad date range, non-positive balance). It is always
// detected before a simulation starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// NewConfigurationError creates a configuration error with a formatted reason
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// DataError indicates missing or unusable market data (empty history,
// provider failure). No partial results are produced after a DataError.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "data error: " + e.Reason
}

// NewDataError creates a data error with a formatted reason
func NewDataError(format string, args ...interface{}) *DataError {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidOrderError indicates an order that was rejected during validation,
// before any account state was touched.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return "invalid order: " + e.Reason
}

// NewInvalidOrderError creates an invalid order error with a formatted reason
func NewInvalidOrderError(format string, args ...interface{}) *InvalidOrderError {
	return &InvalidOrderError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates an unknown account, order, position or backtest ID
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a not found error for the given resource and ID
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}
