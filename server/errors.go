package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/akismet/akismetclient-go/errors"
	"github.com/akismet/akismetclient-go/protocol"
)

// ErrorResponseBody is the JSON body of every error returned by the proxy
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

var (
	errInternal = ErrorResponseBody{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please retry later.",
	}
	errBadEncoding = ErrorResponseBody{
		Code:     "UNSUPPORTED_ENCODING",
		Message:  "The request body encoding is not supported.",
		Category: "client",
		Action:   "Send an identity, gzip or zstd encoded body.",
	}
	errTooLarge = ErrorResponseBody{
		Code:     "BODY_TOO_LARGE",
		Message:  "The request body is too large.",
		Category: "client",
		Action:   "Shorten the submitted content.",
	}
)

func writeErrorBody(w http.ResponseWriter, statusCode int, body ErrorResponseBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeError maps an Akismet error to a status code and relays the service headers
func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeErrorBody(w, http.StatusRequestEntityTooLarge, errTooLarge)
		return
	}

	var ae *errors.AkismetError
	if !stderrors.As(err, &ae) {
		writeErrorBody(w, http.StatusInternalServerError, errInternal)
		return
	}

	status, body := http.StatusBadGateway, ErrorResponseBody{
		Message:  ae.Error(),
		Category: "upstream",
		Action:   "Please retry later.",
	}
	switch ae.Type {
	case errors.ParseError, errors.SerdeError, errors.ConfigError, errors.IOError:
		status = http.StatusBadRequest
		body.Code = "INVALID_REQUEST"
		body.Category = "client"
		body.Action = "Fix the submitted fields and retry."
	case errors.TransportError:
		body.Code = "UPSTREAM_UNAVAILABLE"
	case errors.ServiceAlertError:
		if ae.AlertCode != "" {
			w.Header().Set(protocol.HeaderAlertCode, ae.AlertCode)
		}
		w.Header().Set(protocol.HeaderAlertMsg, ae.Message)
		body.Code = "SERVICE_ALERT"
		body.Category = "account"
		body.Action = "Check the Akismet account status."
	case errors.DebugHelpError:
		w.Header().Set(protocol.HeaderDebugHelp, ae.Message)
		status = http.StatusBadRequest
		body.Code = "DEBUG_HELP"
		body.Category = "client"
		body.Action = "Follow the debug help and retry."
	case errors.ProtocolError:
		body.Code = "PROTOCOL_ERROR"
	default:
		status = http.StatusInternalServerError
		body = errInternal
	}
	writeErrorBody(w, status, body)
}
