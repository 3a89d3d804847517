package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/support-chat/internal/api/response"
)

// maxBodyBytes caps JSON request bodies at 100kb.
const maxBodyBytes = 100 << 10

// decodeBody reads a JSON body into dst and writes the error response
// itself when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		response.BadRequest(w, "invalid request body")
		return false
	}
	return true
}
