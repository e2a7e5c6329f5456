package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"

	domlesson "github.com/Zhima-Mochi/lessonshop/internal/domain/lesson"
)

const maxJSONBody = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeFailure reports a server-side failure with the underlying cause for diagnostics.
func writeFailure(w http.ResponseWriter, status int, msg string, err error) {
	body := messageResponse{Message: msg}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

// writeLessonError maps catalog errors; failMsg is used for anything unexpected.
func writeLessonError(w http.ResponseWriter, err error, failMsg string) {
	var ve *domlesson.ValidationError
	switch {
	case errors.Is(err, domlesson.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Lesson not found")
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, "Invalid "+ve.Field)
	case errors.Is(err, domlesson.ErrInvalid):
		writeMessage(w, http.StatusBadRequest, "Invalid lesson fields")
	default:
		writeFailure(w, http.StatusInternalServerError, failMsg, err)
	}
}
