package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/checkout"
	"github.com/ariefcatur/pandagamers-storefront/internal/datastore"
)

var (
	errBadJSON   = errors.New("invalid json")
	errForbidden = errors.New("admin role required")
	errSignedOut = errors.New("sign in required")
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps package errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "invalid form", "fields": verr.Fields})
		return
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadJSON), errors.Is(err, checkout.ErrBadStatus), errors.Is(err, checkout.ErrEmptyCart):
		code = http.StatusBadRequest
	case errors.Is(err, errSignedOut), errors.Is(err, datastore.ErrBadCredential), errors.Is(err, api.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, errForbidden), errors.Is(err, datastore.ErrProtectedUser):
		code = http.StatusForbidden
	case errors.Is(err, datastore.ErrNotFound), errors.Is(err, checkout.ErrOrderNotFound), api.IsStatus(err, http.StatusNotFound):
		code = http.StatusNotFound
	case errors.Is(err, checkout.ErrInProgress):
		code = http.StatusConflict
	case errors.Is(err, checkout.ErrSubmitFailed), errors.Is(err, checkout.ErrConfirmFailed):
		code = http.StatusBadGateway
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return nil
}

// queryInt returns def when the parameter is missing or not a number.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}
