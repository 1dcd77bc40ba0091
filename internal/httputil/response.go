package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes data as a JSON response. Encoding happens before
// any header is written so a marshal failure still produces a clean
// 500 instead of a truncated body.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// ProblemDetail is an RFC 7807 problem response. Extra fields are
// flattened into the top-level object on marshal.
type ProblemDetail struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Extra    map[string]interface{} `json:"-"`
}

// MarshalJSON implements json.Marshaler
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}

	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extra {
		m[k] = v
	}

	return json.Marshal(m)
}

// RespondError writes an RFC 7807 problem response
func RespondError(w http.ResponseWriter, status int, detail string) {
	respondProblem(w, ProblemDetail{
		Type:   errorTypeFromStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// RespondErrorWithExtras writes an RFC 7807 problem response carrying
// additional top-level fields, such as the surviving asset ID on a
// duplicate upload
func RespondErrorWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]interface{}) {
	respondProblem(w, ProblemDetail{
		Type:   errorTypeFromStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Extra:  extras,
	})
}

func respondProblem(w http.ResponseWriter, problem ProblemDetail) {
	payload, err := json.Marshal(problem)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	w.Write(payload)
}

// errorTypeFromStatus maps a status code to the RFC 9110 section
// defining it
func errorTypeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "https://www.rfc-editor.org/rfc/rfc9110#section-15.5.1"
	case http.StatusUnauthorized:
		return "https://www.rfc-editor.org/rfc/rfc9110#section-15.5.2"
	case http.StatusForbidden:
		return "https://www.rfc-editor.org/rfc/rfc9110#section-15.5.4"
	case http.StatusNotFound:
		return "https://www.rfc-editor.org/rfc/rfc9110#section-15.5.5"
	case http.StatusConflict:
		return "https://www.rfc-editor.org/rfc/rfc9110#section-15.5.10"
	case http.StatusInternalServerError:
		return "https://www.rfc-editor.org/rfc/rfc9110#section-15.6.1"
	default:
		return "about:blank"
	}
}
