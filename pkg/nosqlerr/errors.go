// Package nosqlerr defines the error taxonomy shared by every component of
// the SDK: wire codec, auth providers, transport, the executor and the
// query driver all return *Error rather than ad-hoc error values, so a
// caller can switch on Code regardless of which layer produced it.
package nosqlerr

import (
	"errors"
	"fmt"
)

// Code is the wire-level error code. Values map 1:1 to the integer carried
// in the response envelope (spec §4.4, §7).
type Code int

// Error code bands. See Band() and the table in spec §7.
const (
	NoError Code = 0

	// User errors (1-49): never retried, surfaced immediately.
	UnknownOperation           Code = 1
	TableNotFound              Code = 2
	IndexNotFound              Code = 3
	IllegalArgument            Code = 4
	RowSizeLimitExceeded       Code = 5
	KeySizeLimitExceeded       Code = 6
	BatchOpNumberLimitExceeded Code = 7
	RequestSizeLimitExceeded   Code = 8
	TableExists                Code = 9
	IndexExists                Code = 10
	InvalidAuthorization       Code = 11
	InsufficientPermission     Code = 12
	ResourceExists             Code = 13
	ResourceNotFound           Code = 14
	TableLimitExceeded         Code = 15
	IndexLimitExceeded         Code = 16
	BadProtocolMessage         Code = 17
	EvolutionLimitExceeded     Code = 18
	TableDeploymentLimitExceeded  Code = 19
	TenantDeploymentLimitExceeded Code = 20
	OperationNotSupported      Code = 21
	EtagMismatch               Code = 22
	CannotCancelWorkRequest    Code = 23
	UnsupportedProtocol        Code = 24

	// Throttling errors (50-99): retried with backoff, except SizeLimitExceeded.
	ReadLimitExceeded      Code = 50
	WriteLimitExceeded     Code = 51
	SizeLimitExceeded      Code = 52
	OperationLimitExceeded Code = 53

	// Retryable server errors (100-124): retried with backoff until deadline.
	RequestTimeout          Code = 100
	ServerError             Code = 101
	ServiceUnavailable      Code = 102
	TableBusy               Code = 103
	SecurityInfoUnavailable Code = 104
	RetryAuthentication     Code = 105

	// Fatal server errors (125+): surfaced immediately.
	UnknownError Code = 125
	IllegalState Code = 126

	// InternalRetry is never placed on the wire. No code path in this SDK
	// returns it, and the executor does not test for it.
	InternalRetry Code = 1001
)

// Band classifies an error code per the retry table in spec §7.
type Band int

const (
	BandUser Band = iota
	BandThrottling
	BandRetryableServer
	BandFatalServer
)

// Band returns which retry policy applies to c.
func (c Code) Band() Band {
	switch {
	case c >= 1 && c <= 49:
		return BandUser
	case c >= 50 && c <= 99:
		return BandThrottling
	case c >= 100 && c <= 124:
		return BandRetryableServer
	default:
		return BandFatalServer
	}
}

// Retryable reports whether the executor should retry a request that
// failed with this code. SizeLimitExceeded is the one throttling code
// that is never retried (spec §7).
func (c Code) Retryable() bool {
	if c == SizeLimitExceeded {
		return false
	}
	switch c.Band() {
	case BandThrottling, BandRetryableServer:
		return true
	default:
		return false
	}
}

func (c Code) String() string {
	switch c {
	case NoError:
		return "NoError"
	case UnknownOperation:
		return "UnknownOperation"
	case TableNotFound:
		return "TableNotFound"
	case IndexNotFound:
		return "IndexNotFound"
	case IllegalArgument:
		return "IllegalArgument"
	case RowSizeLimitExceeded:
		return "RowSizeLimitExceeded"
	case KeySizeLimitExceeded:
		return "KeySizeLimitExceeded"
	case BatchOpNumberLimitExceeded:
		return "BatchOpNumberLimitExceeded"
	case RequestSizeLimitExceeded:
		return "RequestSizeLimitExceeded"
	case TableExists:
		return "TableExists"
	case IndexExists:
		return "IndexExists"
	case InvalidAuthorization:
		return "InvalidAuthorization"
	case InsufficientPermission:
		return "InsufficientPermission"
	case ResourceExists:
		return "ResourceExists"
	case ResourceNotFound:
		return "ResourceNotFound"
	case TableLimitExceeded:
		return "TableLimitExceeded"
	case IndexLimitExceeded:
		return "IndexLimitExceeded"
	case BadProtocolMessage:
		return "BadProtocolMessage"
	case EvolutionLimitExceeded:
		return "EvolutionLimitExceeded"
	case TableDeploymentLimitExceeded:
		return "TableDeploymentLimitExceeded"
	case TenantDeploymentLimitExceeded:
		return "TenantDeploymentLimitExceeded"
	case OperationNotSupported:
		return "OperationNotSupported"
	case EtagMismatch:
		return "EtagMismatch"
	case CannotCancelWorkRequest:
		return "CannotCancelWorkRequest"
	case UnsupportedProtocol:
		return "UnsupportedProtocol"
	case ReadLimitExceeded:
		return "ReadLimitExceeded"
	case WriteLimitExceeded:
		return "WriteLimitExceeded"
	case SizeLimitExceeded:
		return "SizeLimitExceeded"
	case OperationLimitExceeded:
		return "OperationLimitExceeded"
	case RequestTimeout:
		return "RequestTimeout"
	case ServerError:
		return "ServerError"
	case ServiceUnavailable:
		return "ServiceUnavailable"
	case TableBusy:
		return "TableBusy"
	case SecurityInfoUnavailable:
		return "SecurityInfoUnavailable"
	case RetryAuthentication:
		return "RetryAuthentication"
	case UnknownError:
		return "UnknownError"
	case IllegalState:
		return "IllegalState"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// knownCodes is the set of wire codes this SDK version recognizes,
// checked by FromInt.
var knownCodes = map[Code]struct{}{
	NoError: {}, UnknownOperation: {}, TableNotFound: {}, IndexNotFound: {},
	IllegalArgument: {}, RowSizeLimitExceeded: {}, KeySizeLimitExceeded: {},
	BatchOpNumberLimitExceeded: {}, RequestSizeLimitExceeded: {}, TableExists: {},
	IndexExists: {}, InvalidAuthorization: {}, InsufficientPermission: {},
	ResourceExists: {}, ResourceNotFound: {}, TableLimitExceeded: {},
	IndexLimitExceeded: {}, BadProtocolMessage: {}, EvolutionLimitExceeded: {},
	TableDeploymentLimitExceeded: {}, TenantDeploymentLimitExceeded: {},
	OperationNotSupported: {}, EtagMismatch: {}, CannotCancelWorkRequest: {},
	UnsupportedProtocol: {}, ReadLimitExceeded: {}, WriteLimitExceeded: {},
	SizeLimitExceeded: {}, OperationLimitExceeded: {}, RequestTimeout: {},
	ServerError: {}, ServiceUnavailable: {}, TableBusy: {},
	SecurityInfoUnavailable: {}, RetryAuthentication: {}, UnknownError: {},
	IllegalState: {},
}

// FromInt maps a wire integer error code to a Code, falling back to
// UnknownError for values this SDK version doesn't recognize (a newer
// server may define codes an older client has never heard of).
func FromInt(v int32) Code {
	c := Code(v)
	if _, ok := knownCodes[c]; !ok {
		return UnknownError
	}
	return c
}

// Error is the error type returned by every exported SDK operation.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (nosql-go-sdk %s)", e.Code, e.Message, SDKVersion)
}

// New builds an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IllegalArg is a convenience constructor for the most common user error.
func IllegalArg(format string, args ...any) *Error {
	return New(IllegalArgument, format, args...)
}

// BadProtocol builds a BadProtocolMessage error; the executor's decode
// path reports these to callers as IllegalArgument per spec §7, since a
// malformed frame is not something retrying will fix.
func BadProtocol(format string, args ...any) *Error {
	return New(BadProtocolMessage, format, args...)
}

// AsError reports whether err is (or wraps) an *Error, per the standard
// errors.As convention used throughout this SDK.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
