package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, code derrors.Code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Type: string(code), Message: message}})
}

// writeError maps err to a status code and the JSON error envelope. Errors
// without a code are logged and reported as internal errors.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := derrors.GetCode(err)
	status := derrors.HTTPStatus(code)
	if code == "" || status == http.StatusInternalServerError {
		logger.Error("unhandled error", "err", err)
		if code == "" {
			code = derrors.ErrCodeInternal
		}
		writeErrorMessage(w, http.StatusInternalServerError, code, "An unexpected error occurred")
		return
	}
	writeErrorMessage(w, status, code, derrors.UserMessage(err))
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}
