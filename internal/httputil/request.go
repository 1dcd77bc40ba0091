package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodyBytes caps JSON request bodies. Originals travel to blob
// storage out of band, so this surface only ever carries metadata and
// small inline payloads for server-side hashing.
const maxBodyBytes = 10 << 20

// ParseJSON decodes the request body into dest. Unknown fields are
// ignored so newer console builds can post fields this server version
// does not know yet.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
