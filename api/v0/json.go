package v0

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v with the given status. Encoding errors are returned so
// the caller's error path handles them.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(b, '\n'))
	return err
}
