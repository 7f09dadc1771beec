// Package derrors provides the typed errors used across compleat.
// Every error carries a stable code so callers can branch on it with errors.As.
package derrors

import (
	"fmt"
)

// CompleatError is implemented by every error in this package
type CompleatError interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ContractError reports a programming error by the caller: a nil or
// non-matcher registration, or a cursor outside the input.
type ContractError struct {
	baseError
	Operation string
}

// NewContractError creates a new contract violation
func NewContractError(operation string, message string) *ContractError {
	return &ContractError{
		baseError: baseError{
			code:    "CONTRACT_VIOLATION",
			message: fmt.Sprintf("%s: %s", operation, message),
		},
		Operation: operation,
	}
}

// NotRegisteredError is returned when a registry operation names a matcher
// the manager does not know.
type NotRegisteredError struct {
	baseError
	Matcher string
}

// NewNotRegisteredError creates a new not registered error
func NewNotRegisteredError(matcher string) *NotRegisteredError {
	return &NotRegisteredError{
		baseError: baseError{
			code:    "NOT_REGISTERED",
			message: fmt.Sprintf("matcher %s is not registered", matcher),
		},
		Matcher: matcher,
	}
}

// AlreadyExistsError represents errors when a resource already exists
type AlreadyExistsError struct {
	baseError
	Resource string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource string, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			code:    "ALREADY_EXISTS",
			message: message,
		},
		Resource: resource,
	}
}

// MatcherError wraps a failure raised while a matcher computed its result.
// It never reaches the caller of Complete; it is logged and reported.
type MatcherError struct {
	baseError
	Matcher  string
	Panicked bool
}

// NewMatcherError wraps an error returned by a matcher
func NewMatcherError(matcher string, cause error) *MatcherError {
	return &MatcherError{
		baseError: baseError{
			code:    "MATCHER_ERROR",
			message: fmt.Sprintf("matcher %s failed", matcher),
			cause:   cause,
		},
		Matcher: matcher,
	}
}

// NewMatcherPanic wraps a value recovered from a panicking matcher
func NewMatcherPanic(matcher string, recovered interface{}) *MatcherError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return &MatcherError{
		baseError: baseError{
			code:    "MATCHER_ERROR",
			message: fmt.Sprintf("matcher %s panicked", matcher),
			cause:   cause,
		},
		Matcher:  matcher,
		Panicked: true,
	}
}

// ConfigurationError represents errors in configuration files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			code:    "CONFIG_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// CacheError represents errors in cache operations
type CacheError struct {
	baseError
	Path string
}

// NewCacheError creates a new cache error
func NewCacheError(path string, message string, cause error) *CacheError {
	return &CacheError{
		baseError: baseError{
			code:    "CACHE_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// ScriptError represents errors loading or running a script matcher
type ScriptError struct {
	baseError
	Script string
}

// NewScriptError creates a new script error
func NewScriptError(script string, message string, cause error) *ScriptError {
	return &ScriptError{
		baseError: baseError{
			code:    "SCRIPT_ERROR",
			message: message,
			cause:   cause,
		},
		Script: script,
	}
}

// AuthorizationError represents errors reading or changing script trust
type AuthorizationError struct {
	baseError
	Path string
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(path string, message string, cause error) *AuthorizationError {
	return &AuthorizationError{
		baseError: baseError{
			code:    "AUTHORIZATION_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}
