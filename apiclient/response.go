package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Response is the envelope returned for every successful call.
// Success is always true for a returned Response; failures are *APIError.
type Response[T any] struct {
	Data    T
	Status  int
	Success bool
	Message string
	Header  http.Header
}

type rawResponse struct {
	status    int
	header    http.Header
	body      []byte
	method    string
	url       string
	requestID string
}

func (r *rawResponse) isJSON() bool {
	ct := r.header.Get("Content-Type")
	if ct == "" {
		return json.Valid(r.body)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// object returns the body as a JSON object, or nil when it is not one.
func (r *rawResponse) object() map[string]any {
	if !r.isJSON() {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(r.body, &m); err != nil {
		return nil
	}
	return m
}

func (r *rawResponse) message() string {
	if m, ok := r.object()["message"].(string); ok {
		return m
	}
	return ""
}

// statusError returns the *APIError for a non-2xx response, nil otherwise.
func (r *rawResponse) statusError() error {
	if r.status >= 200 && r.status < 300 {
		return nil
	}
	details := r.object()
	if details == nil && len(bytes.TrimSpace(r.body)) > 0 {
		details = map[string]any{"body": string(r.body)}
	}
	msg, _ := details["message"].(string)
	if msg == "" {
		msg = fmt.Sprintf("HTTP Error %d", r.status)
	}
	return &APIError{
		Message:   msg,
		Status:    r.status,
		Details:   details,
		Category:  categorize(r.status),
		Method:    r.method,
		URL:       r.url,
		RequestID: r.requestID,
	}
}

func decodeResponse[T any](raw *rawResponse) (*Response[T], error) {
	out := &Response[T]{
		Status:  raw.status,
		Success: true,
		Message: raw.message(),
		Header:  raw.header,
	}

	switch p := any(&out.Data).(type) {
	case *[]byte:
		*p = raw.body
		return out, nil
	case *json.RawMessage:
		*p = raw.body
		return out, nil
	}

	if len(bytes.TrimSpace(raw.body)) == 0 {
		return out, nil
	}

	if !raw.isJSON() {
		switch p := any(&out.Data).(type) {
		case *string:
			*p = string(raw.body)
			return out, nil
		case *any:
			*p = string(raw.body)
			return out, nil
		}
	}

	if err := json.Unmarshal(raw.body, &out.Data); err != nil {
		return nil, &APIError{
			Message:   fmt.Sprintf("failed to decode response: %v", err),
			Details:   map[string]any{"status": raw.status},
			Category:  CategoryDecode,
			Method:    raw.method,
			URL:       raw.url,
			RequestID: raw.requestID,
			Cause:     err,
		}
	}
	return out, nil
}
