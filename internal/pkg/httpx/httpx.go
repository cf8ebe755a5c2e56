package httpx

import (
	"encoding/json"
	"strings"
)

// HTTPStatusCoder is implemented by errors that carry an HTTP status.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorMessage extracts the server's message and code from an error response
// body. It understands the {"error":{"message","code"}} envelope plus the
// flattened {"message"} and {"error":"..."} variants; anything else falls
// back to the trimmed raw text.
func ErrorMessage(body []byte) (message, code string) {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		if len(env.Error) > 0 {
			var eb errorBody
			if json.Unmarshal(env.Error, &eb) == nil && strings.TrimSpace(eb.Message) != "" {
				return strings.TrimSpace(eb.Message), strings.TrimSpace(eb.Code)
			}
			var s string
			if json.Unmarshal(env.Error, &s) == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), ""
			}
		}
		if strings.TrimSpace(env.Message) != "" {
			return strings.TrimSpace(env.Message), strings.TrimSpace(env.Code)
		}
	}
	return Truncate(strings.TrimSpace(string(body)), 512), ""
}

// Truncate caps s at max bytes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
