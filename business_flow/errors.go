// Package businessflow contains the core business logic and use cases for attribution workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Not found errors
	ErrUserEventsNotFound = errors.New("no events found for user")
	ErrJourneyNotFound    = errors.New("customer journey not found")
	ErrCampaignNotFound   = errors.New("campaign not found")

	// Input errors
	ErrOrganizationIDRequired  = errors.New("organization ID is required")
	ErrUserIDRequired          = errors.New("user ID is required")
	ErrVisitorIDRequired       = errors.New("visitor ID is required")
	ErrEventTypeRequired       = errors.New("event type is required")
	ErrInvalidEventType        = errors.New("event type is not supported")
	ErrNegativeEventValue      = errors.New("event value cannot be negative")
	ErrConversionValueRequired = errors.New("conversion value is required")
	ErrNegativeConversionValue = errors.New("conversion value cannot be negative")
	ErrStartDateAfterEndDate   = errors.New("start date cannot be after end date")

	// Storage errors
	ErrPersistenceFailure = errors.New("persistence failure")
)

// Error codes carried by BusinessError
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUserEventsNotFound = "USER_EVENTS_NOT_FOUND"
	CodeJourneyNotFound    = "JOURNEY_NOT_FOUND"
	CodeCampaignNotFound   = "CAMPAIGN_NOT_FOUND"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeInvalidTimeRange   = "INVALID_TIME_RANGE"
	CodeExportFailure      = "EXPORT_FAILED"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// persistenceError wraps a storage error so both the sentinel and the driver error stay inspectable
func persistenceError(message string, err error) *BusinessError {
	return NewBusinessError(CodePersistenceFailure, message, fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
}

// ErrorCode returns the BusinessError code in err's chain, or "" when there is none
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsUserEventsNotFound(err error) bool {
	return errors.Is(err, ErrUserEventsNotFound)
}

func IsJourneyNotFound(err error) bool {
	return errors.Is(err, ErrJourneyNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

// IsNotFound reports whether err is any of the not found errors
func IsNotFound(err error) bool {
	return IsUserEventsNotFound(err) || IsJourneyNotFound(err) || IsCampaignNotFound(err)
}

func IsOrganizationIDRequired(err error) bool {
	return errors.Is(err, ErrOrganizationIDRequired)
}

func IsUserIDRequired(err error) bool {
	return errors.Is(err, ErrUserIDRequired)
}

func IsVisitorIDRequired(err error) bool {
	return errors.Is(err, ErrVisitorIDRequired)
}

func IsEventTypeRequired(err error) bool {
	return errors.Is(err, ErrEventTypeRequired)
}

func IsInvalidEventType(err error) bool {
	return errors.Is(err, ErrInvalidEventType)
}

func IsNegativeEventValue(err error) bool {
	return errors.Is(err, ErrNegativeEventValue)
}

func IsConversionValueRequired(err error) bool {
	return errors.Is(err, ErrConversionValueRequired)
}

func IsNegativeConversionValue(err error) bool {
	return errors.Is(err, ErrNegativeConversionValue)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

// IsInvalidInput reports whether err was caused by a rejected request
func IsInvalidInput(err error) bool {
	return IsOrganizationIDRequired(err) ||
		IsUserIDRequired(err) ||
		IsVisitorIDRequired(err) ||
		IsEventTypeRequired(err) ||
		IsInvalidEventType(err) ||
		IsNegativeEventValue(err) ||
		IsConversionValueRequired(err) ||
		IsNegativeConversionValue(err) ||
		IsStartDateAfterEndDate(err)
}

func IsPersistenceFailure(err error) bool {
	return errors.Is(err, ErrPersistenceFailure)
}
