package shared

import (
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// Envelope is the JSON body of every response the gateway emits.
type Envelope struct {
	Msg  string `json:"msg"`
	Data any    `json:"data"`
	Code string `json:"code,omitempty"`
}

// FaultDetail describes a failure inside the data field of an envelope.
type FaultDetail struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Trace   string `json:"trace"`
}

// NewFaultDetail builds a FaultDetail with path separators in file and trace
// rewritten to backslashes so they survive JSON transport unescaped.
func NewFaultDetail(message string, code int, file string, line int, trace string) FaultDetail {
	return FaultDetail{
		Message: message,
		Code:    code,
		File:    strings.ReplaceAll(file, "/", `\`),
		Line:    line,
		Trace:   strings.ReplaceAll(trace, "/", `\`),
	}
}

// NewEnvelope wraps data into an Envelope.
//
// Strings become the message. Envelopes and *Error values keep their own
// shape, with restCode filling in a missing code. Anything else is placed
// into the data field with an empty message.
func NewEnvelope(data any, restCode string) Envelope {
	var env Envelope
	switch v := data.(type) {
	case nil:
		env = Envelope{}
	case string:
		env = Envelope{Msg: v}
	case Envelope:
		env = v
	case *Envelope:
		env = *v
	case *Error:
		env = v.Envelope()
	default:
		env = Envelope{Data: v}
	}

	if env.Code == "" {
		env.Code = restCode
	}
	return env
}

// RespondWithEnvelope writes env as JSON with the given status code.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		slog.Error("failed to encode response envelope",
			"error", err,
			"trace_id", GetTraceID(r.Context()),
			"path", r.URL.Path)

		status = http.StatusInternalServerError
		body, _ = json.Marshal(Envelope{Msg: MsgUnhandledFault})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("failed to write response body", "error", err, "path", r.URL.Path)
	}
}
