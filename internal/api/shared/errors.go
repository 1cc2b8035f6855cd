package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Kind classifies every failure the gateway can report to a client.
type Kind int

const (
	KindUnknown Kind = iota
	KindRouteNotFound
	KindUnauthorized
	KindForbidden
	KindValidationFailed
	KindDomainOperationFailed
	KindUnhandledFault
)

// Wire codes carried in the envelope's code field. These strings are part of
// the public API and must not change.
const (
	CodeNoRoute          = `RESTController\RESTController::ID_NO_ROUTE`
	CodeNoAdmin          = `RESTController\libs\RESTLib::ID_NO_ADMIN`
	CodeNoPermission     = `RESTController\libs\RESTLib::ID_NO_PERMISSION`
	CodeTokenMissing     = `RESTController\libs\OAuth2Middleware::ID_NO_TOKEN`
	CodeTokenInvalid     = `RESTController\core\auth\Token::ID_INVALID`
	CodeTokenExpired     = `RESTController\core\auth\Token::ID_EXPIRED`
	CodeIDParseProblem   = `RESTController\libs\Exceptions\IdParseProblem`
	CodeMissingParameter = `RESTController\libs\Exceptions\MissingParameter`
	CodeCreateFailed     = `RESTController\libs\Exceptions\CreateFailed`
	CodeNotFound         = `RESTController\libs\Exceptions\NotFound`
	CodeHalt             = "halt"
)

// Client facing messages.
const (
	MsgNoRoute        = "There is no route matching this URI!"
	MsgNoAdmin        = "Access denied. Administrator permissions required."
	MsgNoPermission   = "Access denied. Missing permission for this route."
	MsgTokenMissing   = "No access-token provided or using incorrect format ('Bearer TOKEN')."
	MsgTokenInvalid   = "Invalid access-token."
	MsgTokenExpired   = "The access-token has expired."
	MsgUnhandledFault = "An error occured while handling this route!"
	MsgNoResponse     = "The route finished without sending a response."
	MsgInternal       = "An internal error occured."
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindRouteNotFound:         "route_not_found",
	KindUnauthorized:          "unauthorized",
	KindForbidden:             "forbidden",
	KindValidationFailed:      "validation_failed",
	KindDomainOperationFailed: "domain_operation_failed",
	KindUnhandledFault:        "unhandled_fault",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Status returns the default HTTP status for the kind. Forbidden is reported
// as 401 unless the router is configured otherwise.
func (k Kind) Status() int {
	switch k {
	case KindRouteNotFound:
		return http.StatusNotFound
	case KindUnauthorized, KindForbidden:
		return http.StatusUnauthorized
	case KindValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the default wire code for the kind, or "" when the kind has none.
func (k Kind) Code() string {
	switch k {
	case KindRouteNotFound:
		return CodeNoRoute
	case KindUnauthorized:
		return CodeTokenInvalid
	case KindForbidden:
		return CodeNoPermission
	default:
		return ""
	}
}

// Error is a failure that knows how to present itself as an envelope.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Status overrides the kind's default HTTP status when non-zero.
	Status int
	Data   any
	Err    error
}

// New creates an Error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an Error of the given kind around a cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the explicit status or the kind's default.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Kind.Status()
}

// RESTCode returns the explicit code or the kind's default.
func (e *Error) RESTCode() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Kind.Code()
}

// Envelope renders the error for the client. The wrapped cause is never included.
func (e *Error) Envelope() Envelope {
	return Envelope{Msg: e.Message, Data: e.Data, Code: e.RESTCode()}
}

// WithStatus returns a copy of e with an explicit HTTP status.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

// WithData returns a copy of e carrying data in the envelope.
func (e *Error) WithData(data any) *Error {
	c := *e
	c.Data = data
	return &c
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// ErrNoRoute reports a request no route matched.
func ErrNoRoute() *Error {
	return New(KindRouteNotFound, CodeNoRoute, MsgNoRoute)
}

// ErrNoAdmin reports a caller acting for another user without admin rights.
func ErrNoAdmin() *Error {
	return New(KindForbidden, CodeNoAdmin, MsgNoAdmin)
}

// ErrNoPermission reports an API client lacking a permission for the route.
func ErrNoPermission() *Error {
	return New(KindForbidden, CodeNoPermission, MsgNoPermission)
}

// ErrTokenMissing reports a request without a bearer token.
func ErrTokenMissing() *Error {
	return New(KindUnauthorized, CodeTokenMissing, MsgTokenMissing)
}

// ErrTokenInvalid reports a token that failed validation.
func ErrTokenInvalid(err error) *Error {
	return Wrap(KindUnauthorized, CodeTokenInvalid, MsgTokenInvalid, err)
}

// ErrTokenExpired reports an expired token.
func ErrTokenExpired(err error) *Error {
	return Wrap(KindUnauthorized, CodeTokenExpired, MsgTokenExpired, err)
}

// IDParseProblem reports an id list that could not be parsed.
func IDParseProblem(raw string, err error) *Error {
	return Wrap(
		KindValidationFailed,
		CodeIDParseProblem,
		fmt.Sprintf("Could not parse ids from '%s', expected a comma separated list of integers.", raw),
		err,
	).WithStatus(http.StatusUnprocessableEntity)
}

// MissingParameter reports a required request parameter that was not supplied.
func MissingParameter(name string) *Error {
	return New(
		KindValidationFailed,
		CodeMissingParameter,
		fmt.Sprintf("Mandatory parameter missing, '%s' not set.", name),
	).WithData(map[string]string{"parameter": name})
}

// NotFound reports a lookup that found nothing.
func NotFound(message string, err error) *Error {
	return Wrap(KindValidationFailed, CodeNotFound, message, err).WithStatus(http.StatusNotFound)
}

// CreateFailed reports a rejected create request. The placeholders %id% and
// %fieldName% in message are replaced by id and fieldName.
func CreateFailed(message, id, fieldName string, err error) *Error {
	msg := strings.NewReplacer("%id%", id, "%fieldName%", fieldName).Replace(message)
	return Wrap(KindValidationFailed, CodeCreateFailed, msg, err).
		WithData(map[string]string{"id": id, "field": fieldName})
}

// DomainFailure reports a failed domain operation. number is surfaced both as
// the envelope code and as data.code.
func DomainFailure(message string, number int, err error) *Error {
	return Wrap(KindDomainOperationFailed, strconv.Itoa(number), message, err).
		WithData(map[string]int{"code": number})
}

// UnhandledFault wraps a recovered fault for the client.
func UnhandledFault(detail FaultDetail, err error) *Error {
	return Wrap(KindUnhandledFault, "", MsgUnhandledFault, err).WithData(detail)
}
