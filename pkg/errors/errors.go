package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeCancelled represents a cooperatively observed cancellation
	ErrorTypeCancelled ErrorType = "cancelled"
	// ErrorTypeFormNotFound represents a missing login form
	ErrorTypeFormNotFound ErrorType = "form_not_found"
	// ErrorTypeListingNotFound represents a missing order listing structure
	ErrorTypeListingNotFound ErrorType = "listing_not_found"
	// ErrorTypeLoginFailed represents rejected credentials or a missing post-login marker
	ErrorTypeLoginFailed ErrorType = "login_failed"
	// ErrorTypeNavigationTimeout represents an exceeded bounded wait
	ErrorTypeNavigationTimeout ErrorType = "navigation_timeout"
	// ErrorTypeScrape wraps unexpected failures during extraction
	ErrorTypeScrape ErrorType = "scrape"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error. All scrape errors are
// fatal to the current run; none are retried internally.
type ScrapeError struct {
	Type    ErrorType
	Stage   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is supports matching by error type so callers can use errors.Is with the
// exported sentinels below.
func (e *ScrapeError) Is(target error) bool {
	var t *ScrapeError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type && t.Stage == "" && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is matching by type.
var (
	ErrCancelled         = &ScrapeError{Type: ErrorTypeCancelled}
	ErrFormNotFound      = &ScrapeError{Type: ErrorTypeFormNotFound}
	ErrListingNotFound   = &ScrapeError{Type: ErrorTypeListingNotFound}
	ErrLoginFailed       = &ScrapeError{Type: ErrorTypeLoginFailed}
	ErrNavigationTimeout = &ScrapeError{Type: ErrorTypeNavigationTimeout}
)

// New creates a new ScrapeError
func New(errType ErrorType, stage, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
	}
}

// NewCancelled creates a cancellation error
func NewCancelled(stage string, err error) *ScrapeError {
	return New(ErrorTypeCancelled, stage, "run cancelled", err)
}

// NewFormNotFound creates a missing-login-form error
func NewFormNotFound(stage string, err error) *ScrapeError {
	return New(ErrorTypeFormNotFound, stage, "login form did not render", err)
}

// NewListingNotFound creates a missing-order-listing error
func NewListingNotFound(stage string, err error) *ScrapeError {
	return New(ErrorTypeListingNotFound, stage, "order listing did not render", err)
}

// NewLoginFailed creates a login failure error
func NewLoginFailed(stage, message string, err error) *ScrapeError {
	return New(ErrorTypeLoginFailed, stage, message, err)
}

// NewNavigationTimeout creates a bounded-wait-exceeded error
func NewNavigationTimeout(stage string, err error) *ScrapeError {
	return New(ErrorTypeNavigationTimeout, stage, "bounded wait exceeded", err)
}

// NewScrape wraps an unexpected extraction failure
func NewScrape(stage, message string, err error) *ScrapeError {
	return New(ErrorTypeScrape, stage, message, err)
}

// NewCache creates a cache error
func NewCache(stage, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, stage, message, err)
}

// NewConfiguration creates a configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the error type label for metrics and logging
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type
	}
	return ErrorTypeScrape
}

// IsCancelled reports whether err is a cancellation error
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsTimeout reports whether err is a bounded-wait timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrNavigationTimeout)
}
