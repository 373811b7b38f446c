package httpapi

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
)

const errorKindRateLimited shell.ErrorKind = "RateLimited"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type response struct {
	OK        bool            `json:"ok"`
	ErrorKind shell.ErrorKind `json:"errorKind,omitempty"`
	Data      any             `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// StatusCode maps an error kind onto an HTTP status.
func StatusCode(kind shell.ErrorKind) int {
	switch kind {
	case shell.ErrorKindNone:
		return http.StatusOK
	case shell.ErrorKindNotFound:
		return http.StatusNotFound
	case shell.ErrorKindForbidden:
		return http.StatusForbidden
	case shell.ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case shell.ErrorKindInvalidAmount,
		shell.ErrorKindAlreadyPaid,
		shell.ErrorKindInsufficientFunds,
		shell.ErrorKindLimitExceeded,
		shell.ErrorKindInvalidArgument:
		return http.StatusBadRequest
	case shell.ErrorKindConflictRetryExhausted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome := shell.OutcomeFrom(data, nil)
	writeJSON(w, http.StatusOK, response{OK: outcome.OK, Data: outcome.Data})
}

// writeError hides the details of storage faults from the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := shell.ErrorKindFrom(err)
	status := StatusCode(kind)
	message := err.Error()

	if status == http.StatusInternalServerError {
		if s.logger != nil {
			s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		}

		message = "internal error"
	}

	writeJSON(w, status, response{ErrorKind: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
