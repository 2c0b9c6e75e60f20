package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

const contentTypeJSON = "application/json; charset=utf-8"

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondWithMessage(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, messageResponse{Message: message})
}

// respondWithError writes err as a JSON message. Server faults are logged
// with their cause; client faults at debug level only.
func respondWithError(w http.ResponseWriter, r *http.Request, l logging.Logger, err error) {
	he := toHTTPError(err)

	if he.Code >= http.StatusInternalServerError {
		l.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		l.Debug(r.Context(), "client error", "method", r.Method, "path", r.URL.Path, "code", he.Code, "error", err)
	}

	respondWithMessage(w, he.Code, he.Message)
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return errBadRequest("Invalid request payload: "+err.Error(), err)
	}
	return nil
}

// appHandler is a handler that reports failures by returning them.
type appHandler func(w http.ResponseWriter, r *http.Request) error

func (h *handlers) wrap(fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			respondWithError(w, r, h.logger, err)
		}
	}
}
