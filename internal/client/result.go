// ABOUTME: Normalized result envelope returned by every API call
// ABOUTME: Classifies HTTP outcomes into kinds so callers never see raw responses

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// User-facing messages used when the backend supplies none.
const (
	MsgTransport     = "Failed to communicate with the server."
	MsgRequestFailed = "An error occurred while processing the request."
	MsgAuthRequired  = "Authentication required."
	MsgForbidden     = "Access denied."
	MsgInvalid       = "Invalid request."
)

// Kind classifies a Result.
type Kind int

const (
	KindOK           Kind = iota // 2xx
	KindInvalid                  // rejected before sending
	KindTransport                // network, timeout, cancellation
	KindUnauthorized             // 401 with no usable refresh
	KindForbidden                // 403
	KindClient                   // other 4xx
	KindServer                   // 5xx
	KindOther                    // any other status
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindInvalid:
		return "invalid"
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindClient:
		return "client_error"
	case KindServer:
		return "server_error"
	default:
		return "other"
	}
}

// Result is the envelope every API call returns. Zero values stand for
// null: Data == nil, Message == "", Code == "", Status == 0, Error == "".
type Result struct {
	Success bool
	Data    json.RawMessage // backend "data" field, only on success
	Message string          // human-readable status or error text
	Code    string          // backend-defined status code
	Status  int             // HTTP status observed
	Error   string          // transport-level error text

	// Raw is the whole parsed response body, kept so callers can read
	// fields outside the envelope. It is not part of the JSON form.
	Raw json.RawMessage

	invalid bool
}

// Kind returns the classification of the result.
func (r Result) Kind() Kind {
	switch {
	case r.Success:
		return KindOK
	case r.invalid:
		return KindInvalid
	case r.Status == 0:
		return KindTransport
	case r.Status == http.StatusUnauthorized:
		return KindUnauthorized
	case r.Status == http.StatusForbidden:
		return KindForbidden
	case r.Status >= 400 && r.Status < 500:
		return KindClient
	case r.Status >= 500:
		return KindServer
	default:
		return KindOther
	}
}

// Err converts a failed result into an error, or nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &ResultError{Result: r}
}

// Decode unmarshals Data into v. A success without data leaves v untouched.
func (r Result) Decode(v any) error {
	if !r.Success {
		return r.Err()
	}
	if len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("invalid response data: %w", err)
	}
	return nil
}

// DecodeData decodes the Data of a successful result into a T.
func DecodeData[T any](r Result) (T, error) {
	var v T
	err := r.Decode(&v)
	return v, err
}

// MarshalJSON renders the envelope with explicit nulls.
func (r Result) MarshalJSON() ([]byte, error) {
	data := r.Data
	if len(data) == 0 {
		data = nil
	}
	return json.Marshal(struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message *string         `json:"message"`
		Code    *string         `json:"code"`
		Status  *int            `json:"status"`
		Error   *string         `json:"error"`
	}{
		Success: r.Success,
		Data:    data,
		Message: nullString(r.Message),
		Code:    nullString(r.Code),
		Status:  nullInt(r.Status),
		Error:   nullString(r.Error),
	})
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}

// ResultError wraps a failed Result so it can travel as an error.
type ResultError struct {
	Result Result
}

func (e *ResultError) Error() string {
	r := e.Result
	msg := r.Message
	if msg == "" {
		msg = MsgRequestFailed
	}
	switch {
	case r.Error != "":
		return fmt.Sprintf("%s (%s)", msg, r.Error)
	case r.Status != 0 && r.Code != "":
		return fmt.Sprintf("%s (status %d, code %s)", msg, r.Status, r.Code)
	case r.Status != 0:
		return fmt.Sprintf("%s (status %d)", msg, r.Status)
	default:
		return msg
	}
}

// KindOf extracts the Kind from an error produced by Result.Err.
func KindOf(err error) (Kind, bool) {
	var re *ResultError
	if errors.As(err, &re) {
		return re.Result.Kind(), true
	}
	return 0, false
}

// envelope is the backend wire format: {data, message, code}.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message json.RawMessage `json:"message"`
	Code    json.RawMessage `json:"code"`
}

// classify builds the final Result from a completed exchange.
func classify(status int, raw json.RawMessage) Result {
	var env envelope
	if len(raw) > 0 {
		// Non-object bodies simply yield no envelope fields
		_ = json.Unmarshal(raw, &env)
	}

	r := Result{
		Status: status,
		Code:   scalarString(env.Code),
		Raw:    raw,
	}

	switch {
	case status >= 200 && status < 300:
		r.Success = true
		if !isNull(env.Data) {
			r.Data = env.Data
		}
		r.Message = scalarString(env.Message)
	case status == http.StatusUnauthorized:
		r.Message = MsgAuthRequired
	case status == http.StatusForbidden:
		r.Message = MsgForbidden
	default:
		r.Message = scalarString(env.Message)
		if r.Message == "" {
			r.Message = MsgRequestFailed
		}
	}
	return r
}

func transportFailure(detail string) Result {
	return Result{Message: MsgTransport, Error: detail}
}

// oversizedBody reports a response whose body exceeded the read limit.
func oversizedBody(status int, limit int64) Result {
	return Result{
		Status:  status,
		Message: MsgRequestFailed,
		Error:   fmt.Sprintf("response body exceeds %d bytes", limit),
	}
}

func invalidRequest(detail string) Result {
	return Result{Message: MsgInvalid, Error: detail, invalid: true}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// scalarString renders a JSON string or number as text; anything else is "".
func scalarString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
