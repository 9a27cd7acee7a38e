// Package errors provides standardized error types for the sitectl CLI tool.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the application.
//
// # Error Types
//
// SiteError is the primary error type, containing:
//   - Code: Categorizes the error (INVALID_DOMAIN, NOT_STAGED, etc.)
//   - Message: Human-readable error description
//   - Domain: The domain name involved (if applicable)
//   - Hint: Remediation advice shown to the operator
//   - Err: The underlying wrapped error (if any)
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison:
//
//	if errors.Is(err, errors.ErrNotStaged) {
//	    // Handle missing staged artifact
//	}
//
// Use errors.As for type assertion:
//
//	var siteErr *errors.SiteError
//	if errors.As(err, &siteErr) {
//	    fmt.Printf("Error code: %s, Domain: %s\n", siteErr.Code, siteErr.Domain)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeInvalidDomain     ErrorCode = "INVALID_DOMAIN"     // Domain failed validation
	ErrCodeNotStaged         ErrorCode = "NOT_STAGED"         // No staged artifact for domain
	ErrCodeNotPublished      ErrorCode = "NOT_PUBLISHED"      // No available entry for domain
	ErrCodeConfigInvalid     ErrorCode = "CONFIG_INVALID"     // Web server rejected the configuration
	ErrCodeIssuanceFailed    ErrorCode = "ISSUANCE_FAILED"    // Certificate authority rejected the request
	ErrCodeQuarantineRestore ErrorCode = "QUARANTINE_RESTORE" // Quarantined markers could not be restored
	ErrCodeToolMissing       ErrorCode = "TOOL_MISSING"       // Required external tool not found
	ErrCodePermission        ErrorCode = "PERMISSION"         // Permission denied
	ErrCodeCancelled         ErrorCode = "CANCELLED"          // Operator declined confirmation
	ErrCodeInternal          ErrorCode = "INTERNAL"           // Internal/unexpected error
)

// SiteError represents a structured error with context about the operation.
type SiteError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Domain name (if applicable)
	Hint    string    // Remediation hint (if any)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	if e.Domain != "" && e.Err != nil {
		return fmt.Sprintf("site %s: %s: %v", e.Domain, e.Message, e.Err)
	}
	if e.Domain != "" {
		return fmt.Sprintf("site %s: %s", e.Domain, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain traversal.
func (e *SiteError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *SiteError) Is(target error) bool {
	t, ok := target.(*SiteError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrInvalidDomain indicates the domain name is not valid.
	ErrInvalidDomain = &SiteError{Code: ErrCodeInvalidDomain, Message: "invalid domain"}

	// ErrNotStaged indicates no staged artifact exists for the domain.
	ErrNotStaged = &SiteError{Code: ErrCodeNotStaged, Message: "no staged configuration"}

	// ErrNotPublished indicates no available entry exists for the domain.
	ErrNotPublished = &SiteError{Code: ErrCodeNotPublished, Message: "configuration not published"}

	// ErrConfigInvalid indicates the web server rejected the configuration.
	ErrConfigInvalid = &SiteError{Code: ErrCodeConfigInvalid, Message: "configuration rejected by web server"}

	// ErrIssuanceFailed indicates the certificate authority rejected the request.
	ErrIssuanceFailed = &SiteError{Code: ErrCodeIssuanceFailed, Message: "certificate issuance failed"}

	// ErrQuarantineRestore indicates quarantined markers could not be restored.
	// This leaves the activation set inconsistent and is always fatal.
	ErrQuarantineRestore = &SiteError{Code: ErrCodeQuarantineRestore, Message: "failed to restore quarantined sites"}

	// ErrToolMissing indicates a required external tool is absent.
	ErrToolMissing = &SiteError{Code: ErrCodeToolMissing, Message: "external tool not found"}

	// ErrCancelled indicates the operator declined a confirmation prompt.
	ErrCancelled = &SiteError{Code: ErrCodeCancelled, Message: "cancelled by operator"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &SiteError{
		Code:    ErrCodePermission,
		Message: "root privileges required",
		Hint:    "re-run with sudo",
	}
)

// InvalidDomain creates an error for a domain that failed validation.
func InvalidDomain(domain, reason string) error {
	return &SiteError{
		Code:    ErrCodeInvalidDomain,
		Message: reason,
		Domain:  domain,
		Hint:    "domains must be dot-separated labels of letters, digits and hyphens",
	}
}

// NotStaged creates an error for a missing staged artifact.
func NotStaged(domain string) error {
	return &SiteError{
		Code:    ErrCodeNotStaged,
		Message: "no staged configuration",
		Domain:  domain,
		Hint:    "run 'sitectl generate' first",
	}
}

// NotPublished creates an error for a missing available entry.
func NotPublished(domain string) error {
	return &SiteError{
		Code:    ErrCodeNotPublished,
		Message: "configuration not published",
		Domain:  domain,
		Hint:    "run 'sitectl publish' first",
	}
}

// ConfigInvalid creates an error carrying the web server's diagnostic output.
func ConfigInvalid(domain, diagnostic string) error {
	return &SiteError{
		Code:    ErrCodeConfigInvalid,
		Message: fmt.Sprintf("configuration rejected by web server: %s", diagnostic),
		Domain:  domain,
		Hint:    "inspect the staged configuration for syntax errors",
	}
}

// IssuanceFailed creates an error carrying the authority's reason.
func IssuanceFailed(domain string, err error) error {
	return &SiteError{
		Code:    ErrCodeIssuanceFailed,
		Message: "certificate issuance failed",
		Domain:  domain,
		Hint:    "check that the domain's A record points at this host and port 80 is reachable",
		Err:     err,
	}
}

// QuarantineRestore creates the fatal error for a failed quarantine restore.
func QuarantineRestore(err error) error {
	return &SiteError{
		Code:    ErrCodeQuarantineRestore,
		Message: "failed to restore quarantined sites; enabled set is inconsistent",
		Hint:    "manually move entries from the quarantine directory back to sites-enabled",
		Err:     err,
	}
}

// ToolMissing creates an error for an absent external tool.
func ToolMissing(tool, installHint string) error {
	return &SiteError{
		Code:    ErrCodeToolMissing,
		Message: fmt.Sprintf("%s is not installed", tool),
		Hint:    installHint,
	}
}

// Cancelled creates an error for a declined confirmation.
func Cancelled(domain string) error {
	return &SiteError{
		Code:    ErrCodeCancelled,
		Message: "cancelled by operator",
		Domain:  domain,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &SiteError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As

// New is a re-export of errors.New for convenience.
var New = errors.New
