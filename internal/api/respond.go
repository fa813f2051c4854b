package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/rs/zerolog"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidBody      = "Corpul cererii nu este un JSON valid"
	msgBodyTooLarge     = "Corpul cererii este prea mare"
	msgNotConfigured    = "Serviciul nu este configurat"
	msgInternal         = "A apărut o eroare neașteptată"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("write response")
	}
}

// writeError answers with the error's status and its user-facing message.
// Errors without a message get fallback.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.err = err
	}
	writeJSON(w, r, apperr.StatusOf(err), map[string]string{"error": apperr.MessageOf(err, fallback)})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	writeError(w, r, apperr.New(apperr.KindMethod, msgMethodNotAllowed), msgMethodNotAllowed)
	return false
}

// decodeBody reads a JSON object of at most MaxBodyBytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Wrap(apperr.KindValidation, msgBodyTooLarge, err)
		}
		return apperr.Wrap(apperr.KindValidation, msgInvalidBody, err)
	}
	return nil
}

func notConfigured() error {
	return apperr.New(apperr.KindConfiguration, msgNotConfigured)
}
